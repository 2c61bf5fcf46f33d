// Package session drives one player's run through the quiz: loading
// content, stepping question by question through the answer reveal,
// collecting extra-challenge picks and submitting the final score.
package session

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"personquiz/internal/domain"
	"personquiz/internal/sequtil"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultRevealDuration is how long the correct answer stays on screen
// before the session moves to the next question.
const DefaultRevealDuration = 1600 * time.Millisecond

var (
	// ErrAlreadyBooted is returned when Boot is called twice.
	ErrAlreadyBooted = errors.New("session already booted")
	// ErrClosed is returned when an operation races session teardown.
	ErrClosed = errors.New("session closed")
	// ErrNoSelection rejects an advance before an option was chosen.
	ErrNoSelection = errors.New("no option selected for current question")
	// ErrRevealActive rejects selection changes while the answer is shown.
	ErrRevealActive = errors.New("reveal in progress")
	// ErrInvalidState rejects operations outside their allowed state.
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// State is the session's position in the quiz flow.
type State int

const (
	StateLoading State = iota
	StateActive
	StateNoContent
	StateExtraChallenge
	StateSubmitting
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateNoContent:
		return "no-content"
	case StateExtraChallenge:
		return "extra-challenge"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Provider is the backend the session talks to. The HTTP client in
// internal/client implements it against the quiz API.
type Provider interface {
	FetchQuestions(ctx context.Context, lang domain.Lang) ([]domain.Question, error)
	FetchChallenge(ctx context.Context, lang domain.Lang) ([]domain.ChallengeItem, error)
	CheckAnswer(ctx context.Context, lang domain.Lang, id int, selected domain.OptionKey) (domain.CheckResult, error)
	SubmitAnswers(ctx context.Context, lang domain.Lang, name string, answers []domain.Answer, extra []int) (domain.SubmitResult, error)
}

// Reveal is the transient overlay shown between answering a question and
// moving on: the authoritative correct option next to the player's pick.
type Reveal struct {
	Correct  domain.OptionKey
	Selected domain.OptionKey
}

// Verdict classifies one option button while a reveal is on screen.
type Verdict int

const (
	VerdictUnmarked Verdict = iota
	VerdictCorrect
	VerdictIncorrect
	VerdictSelectedCorrect
	VerdictSelectedIncorrect
)

// ScheduleFunc schedules fn to run once after d. The returned cancel
// prevents fn from running if it has not fired yet.
type ScheduleFunc func(d time.Duration, fn func()) (cancel func())

func afterFuncSchedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Option configures a Session.
type Option func(*Session)

// WithRevealDuration overrides the fixed reveal window length.
func WithRevealDuration(d time.Duration) Option {
	return func(s *Session) { s.revealDur = d }
}

// WithRand injects a deterministic shuffle source.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) { s.rnd = rnd }
}

// WithScheduler injects the timer primitive, for tests that fire the
// reveal window by hand.
func WithScheduler(schedule ScheduleFunc) Option {
	return func(s *Session) { s.schedule = schedule }
}

// Session owns one player's quiz run. All exported methods are safe for
// concurrent use; network calls and the reveal timer resume through
// guards so a closed session is never mutated.
type Session struct {
	id        string
	provider  Provider
	profile   *Profile
	revealDur time.Duration
	rnd       *rand.Rand
	schedule  ScheduleFunc

	mu           sync.Mutex
	state        State
	err          error
	booted       bool
	closed       bool
	questions    []domain.Question
	challenge    []domain.ChallengeItem
	answers      map[int]domain.OptionKey
	extra        map[int]struct{}
	current      int
	reveal       *Reveal
	advancing    bool
	submitting   bool
	submitFailed bool
	result       *domain.SubmitResult
	cancelReveal func()
}

// New builds a session in the Loading state. Boot must be called before
// the quiz can begin.
func New(provider Provider, profile *Profile, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		provider:  provider,
		profile:   profile,
		revealDur: DefaultRevealDuration,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		schedule:  afterFuncSchedule,
		state:     StateLoading,
		answers:   make(map[int]domain.OptionKey),
		extra:     make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies this session instance, mainly for logs.
func (s *Session) ID() string { return s.id }

// Boot fetches questions and challenge items concurrently, deduplicates
// questions by ID and shuffles both lists. It may be called once; either
// fetch failing is fatal for the session.
func (s *Session) Boot(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.booted {
		s.mu.Unlock()
		return ErrAlreadyBooted
	}
	s.booted = true
	lang := s.profile.Lang()
	s.mu.Unlock()

	var (
		questions []domain.Question
		challenge []domain.ChallengeItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.provider.FetchQuestions(gctx, lang)
		return err
	})
	g.Go(func() error {
		var err error
		challenge, err = s.provider.FetchChallenge(gctx, lang)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err != nil {
		log.Printf("session %s: content load failed: %v", s.id, err)
		s.state = StateError
		s.err = err
		return err
	}

	questions = sequtil.DistinctByID(questions, func(q domain.Question) int { return q.ID })
	s.questions = sequtil.Shuffle(s.rnd, questions)
	s.challenge = sequtil.Shuffle(s.rnd, challenge)

	if len(s.questions) == 0 {
		s.state = StateNoContent
		return nil
	}
	s.state = StateActive
	s.current = 0
	return nil
}

// State reports the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the fatal error for StateError sessions.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Questions returns the session's shuffled question order.
func (s *Session) Questions() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Challenge returns the session's shuffled challenge items.
func (s *Session) Challenge() []domain.ChallengeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChallengeItem, len(s.challenge))
	copy(out, s.challenge)
	return out
}

// Current returns the question on screen, if the quiz is active.
func (s *Session) Current() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.Question{}, false
	}
	return s.questions[s.current], true
}

// Progress reports how many questions have an answer and the total count.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers), len(s.questions)
}

// Select records the player's choice for the current question. Choices
// may be changed freely until the reveal opens.
func (s *Session) Select(key domain.OptionKey) error {
	if !key.Valid() {
		return domain.ErrInvalidOption
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state != StateActive {
		return ErrInvalidState
	}
	if s.advancing {
		return ErrRevealActive
	}
	s.answers[s.questions[s.current].ID] = key
	return nil
}

// Selected returns the recorded choice for the current question.
func (s *Session) Selected() (domain.OptionKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return "", false
	}
	key, ok := s.answers[s.questions[s.current].ID]
	return key, ok
}

// Reveal returns the open reveal overlay, if any.
func (s *Session) Reveal() (Reveal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reveal == nil {
		return Reveal{}, false
	}
	return *s.reveal, true
}

// OptionVerdict classifies an option button for display. Outside a reveal
// window every option is unmarked.
func (s *Session) OptionVerdict(key domain.OptionKey) Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reveal == nil {
		return VerdictUnmarked
	}
	switch {
	case key == s.reveal.Correct && key == s.reveal.Selected:
		return VerdictSelectedCorrect
	case key == s.reveal.Correct:
		return VerdictCorrect
	case key == s.reveal.Selected:
		return VerdictSelectedIncorrect
	default:
		return VerdictIncorrect
	}
}

// Advance moves past the current question: it verifies the recorded
// answer with the backend, shows the reveal for the fixed duration and
// then steps to the next question (or to the extra challenge after the
// last one). A second call while a reveal round-trip or window is open
// is a no-op. If verification fails the session fails open and advances
// immediately without feedback.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrInvalidState
	}
	if s.advancing {
		s.mu.Unlock()
		return nil
	}
	question := s.questions[s.current]
	selected, ok := s.answers[question.ID]
	if !ok {
		s.mu.Unlock()
		return ErrNoSelection
	}
	s.advancing = true
	lang := s.profile.Lang()
	s.mu.Unlock()

	res, err := s.provider.CheckAnswer(ctx, lang, question.ID, selected)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err != nil {
		// Fail open: no feedback, but the player is not blocked.
		log.Printf("session %s: answer check failed, advancing without reveal: %v", s.id, err)
		s.stepLocked()
		return nil
	}
	s.reveal = &Reveal{Correct: res.Correct, Selected: selected}
	s.cancelReveal = s.schedule(s.revealDur, s.closeReveal)
	return nil
}

// closeReveal runs when the reveal window expires.
func (s *Session) closeReveal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.advancing {
		return
	}
	s.stepLocked()
}

// stepLocked clears any reveal and performs the Active(i) transition.
func (s *Session) stepLocked() {
	s.reveal = nil
	s.advancing = false
	s.cancelReveal = nil
	if s.current < len(s.questions)-1 {
		s.current++
		return
	}
	s.state = StateExtraChallenge
}

// ToggleExtra flips one challenge item: selecting twice deselects.
func (s *Session) ToggleExtra(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state != StateExtraChallenge {
		return ErrInvalidState
	}
	if _, ok := s.extra[id]; ok {
		delete(s.extra, id)
	} else {
		s.extra[id] = struct{}{}
	}
	return nil
}

// ExtraSelected lists the picked challenge item IDs in display order.
func (s *Session) ExtraSelected() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extraLocked()
}

func (s *Session) extraLocked() []int {
	out := make([]int, 0, len(s.extra))
	for _, item := range s.challenge {
		if _, ok := s.extra[item.ID]; ok {
			out = append(out, item.ID)
		}
	}
	return out
}

// Submit sends the accumulated answers and extra picks exactly once. A
// failed submission keeps everything intact and may be retried by
// calling Submit again; a submission already in flight blocks a second.
func (s *Session) Submit(ctx context.Context) (domain.SubmitResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.SubmitResult{}, ErrClosed
	}
	allowed := s.state == StateExtraChallenge || (s.state == StateError && s.submitFailed)
	if !allowed || s.submitting {
		s.mu.Unlock()
		return domain.SubmitResult{}, ErrInvalidState
	}
	s.submitting = true
	s.state = StateSubmitting
	s.err = nil
	lang := s.profile.Lang()
	name := s.profile.Name()
	answers := make([]domain.Answer, 0, len(s.answers))
	for _, q := range s.questions {
		if selected, ok := s.answers[q.ID]; ok {
			answers = append(answers, domain.Answer{ID: q.ID, Selected: selected})
		}
	}
	extra := s.extraLocked()
	s.mu.Unlock()

	res, err := s.provider.SubmitAnswers(ctx, lang, name, answers, extra)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if s.closed {
		return domain.SubmitResult{}, ErrClosed
	}
	if err != nil {
		log.Printf("session %s: submit failed: %v", s.id, err)
		s.state = StateError
		s.err = err
		s.submitFailed = true
		return domain.SubmitResult{}, err
	}
	s.submitFailed = false
	s.state = StateDone
	s.result = &res
	return res, nil
}

// Result returns the submission outcome once the session is done.
func (s *Session) Result() (domain.SubmitResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.SubmitResult{}, false
	}
	return *s.result, true
}

// Close tears the session down. Outstanding network results and timers
// are discarded and can no longer mutate state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancelReveal != nil {
		s.cancelReveal()
		s.cancelReveal = nil
	}
}

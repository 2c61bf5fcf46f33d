package app

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"personquiz/internal/domain"
)

// DefaultLeaderboardLimit caps leaderboard reads when no limit is given.
const DefaultLeaderboardLimit = 20

// ContentRepository serves quiz content per language (from cache/backing store).
type ContentRepository interface {
	GetContent(ctx context.Context, lang domain.Lang) (domain.Content, error)
}

// ScoreStore persists submitted scores and serves the leaderboard.
type ScoreStore interface {
	InsertScore(ctx context.Context, name string, score int) error
	TopScores(ctx context.Context, limit int) ([]domain.LeaderboardItem, error)
}

// QuizService contains the server-side quiz use cases: public content
// views, answer checking, scoring and the leaderboard.
type QuizService struct {
	content ContentRepository
	scores  ScoreStore

	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardItem]struct{}
}

func NewQuizService(content ContentRepository, scores ScoreStore) *QuizService {
	return &QuizService{
		content:     content,
		scores:      scores,
		subscribers: make(map[chan []domain.LeaderboardItem]struct{}),
	}
}

// Questions returns the public question list for a language, correct
// answers stripped.
func (s *QuizService) Questions(ctx context.Context, lang domain.Lang) ([]domain.Question, error) {
	content, err := s.content.GetContent(ctx, lang)
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(content.Questions))
	for _, q := range content.Questions {
		questions = append(questions, q.Public())
	}
	return questions, nil
}

// Challenge returns the public challenge items for a language.
func (s *QuizService) Challenge(ctx context.Context, lang domain.Lang) ([]domain.ChallengeItem, error) {
	content, err := s.content.GetContent(ctx, lang)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ChallengeItem, 0, len(content.Challenge))
	for _, it := range content.Challenge {
		items = append(items, it.Public())
	}
	return items, nil
}

// Check returns the authoritative correct option for one question and
// whether the player's pick matched it.
func (s *QuizService) Check(ctx context.Context, lang domain.Lang, id int, selected domain.OptionKey) (domain.CheckResult, error) {
	if !selected.Valid() {
		return domain.CheckResult{}, domain.ErrInvalidOption
	}
	content, err := s.content.GetContent(ctx, lang)
	if err != nil {
		return domain.CheckResult{}, err
	}
	for _, q := range content.Questions {
		if q.ID == id {
			return domain.CheckResult{Correct: q.Correct, IsCorrect: q.Correct == selected}, nil
		}
	}
	return domain.CheckResult{}, domain.ErrQuestionNotFound
}

// Submit scores a full answer sheet, persists the result and returns the
// refreshed leaderboard. Quiz answers score +1 each when correct; each
// selected challenge item adjusts by +1 or -1 depending on its hidden
// correctness flag.
func (s *QuizService) Submit(ctx context.Context, lang domain.Lang, name string, answers []domain.Answer, extra []int) (domain.SubmitResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SubmitResult{}, domain.ErrEmptyName
	}
	if utf8.RuneCountInString(name) > domain.MaxPlayerNameLen {
		return domain.SubmitResult{}, domain.ErrNameTooLong
	}

	content, err := s.content.GetContent(ctx, lang)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	selectedByID := make(map[int]domain.OptionKey, len(answers))
	for _, a := range answers {
		selectedByID[a.ID] = a.Selected
	}

	score := 0
	for _, q := range content.Questions {
		if sel, ok := selectedByID[q.ID]; ok && sel == q.Correct {
			score++
		}
	}

	challengeByID := make(map[int]bool, len(content.Challenge))
	for _, it := range content.Challenge {
		challengeByID[it.ID] = it.Correct
	}
	// Extra picks are a set: repeated IDs count once.
	chosen := make(map[int]struct{}, len(extra))
	for _, id := range extra {
		chosen[id] = struct{}{}
	}
	for id := range chosen {
		correct, known := challengeByID[id]
		if !known {
			continue
		}
		if correct {
			score++
		} else {
			score--
		}
	}

	if err := s.scores.InsertScore(ctx, name, score); err != nil {
		return domain.SubmitResult{}, err
	}
	leaderboard, err := s.scores.TopScores(ctx, DefaultLeaderboardLimit)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	s.broadcast(leaderboard)

	return domain.SubmitResult{
		Score:       score,
		Total:       len(content.Questions),
		Leaderboard: leaderboard,
	}, nil
}

// Leaderboard returns the top scores, best first.
func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardItem, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return s.scores.TopScores(ctx, limit)
}

// Subscribe returns a channel receiving leaderboard snapshots after each
// submission, seeded with the current standing. The caller must invoke
// the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardItem, func(), error) {
	initial, err := s.scores.TopScores(ctx, DefaultLeaderboardLimit)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.LeaderboardItem, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// Seed under the lock so a racing broadcast cannot land before it.
	ch <- initial
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *QuizService) broadcast(leaderboard []domain.LeaderboardItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- leaderboard:
		default:
			// Drop the stale snapshot so a slow reader never blocks scoring.
			select {
			case <-ch:
			default:
			}
			ch <- leaderboard
		}
	}
}

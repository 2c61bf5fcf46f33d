package domain

import "time"

// OptionKey is one of the three fixed outcome tokens of a question,
// following the 1/X/2 three-way result convention. The literal values
// must survive JSON round-trips unchanged.
type OptionKey string

const (
	OptionHome OptionKey = "1"
	OptionDraw OptionKey = "X"
	OptionAway OptionKey = "2"
)

// OptionKeys lists the keys in display order.
var OptionKeys = []OptionKey{OptionHome, OptionDraw, OptionAway}

// Valid reports whether k is one of the three allowed tokens.
func (k OptionKey) Valid() bool {
	return k == OptionHome || k == OptionDraw || k == OptionAway
}

// Media is an optional image or video attached to a question.
type Media struct {
	Type string `json:"type"` // "image" or "video"
	Src  string `json:"src"`
	Alt  string `json:"alt,omitempty"`
}

// Question is the public view of a quiz question: three labeled options,
// no correct answer included.
type Question struct {
	ID      int                  `json:"id"`
	Text    string               `json:"text"`
	Options map[OptionKey]string `json:"options"`
	Media   *Media               `json:"media,omitempty"`
}

// SourceQuestion is the authoritative server-side form; Correct never
// leaves the server through public views.
type SourceQuestion struct {
	ID      int                  `json:"id"`
	Text    string               `json:"text"`
	Options map[OptionKey]string `json:"options"`
	Media   *Media               `json:"media,omitempty"`
	Correct OptionKey            `json:"correct"`
}

// Public strips the correct answer.
func (q SourceQuestion) Public() Question {
	return Question{ID: q.ID, Text: q.Text, Options: q.Options, Media: q.Media}
}

// ChallengeItem is the public view of an optional multi-select bonus item.
type ChallengeItem struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// SourceChallengeItem carries the hidden correctness flag used for scoring:
// a selected correct item is worth +1, a selected incorrect one -1.
type SourceChallengeItem struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Correct bool   `json:"correct"`
}

// Public strips the correctness flag.
func (c SourceChallengeItem) Public() ChallengeItem {
	return ChallengeItem{ID: c.ID, Label: c.Label}
}

// Content is one language's quiz material as loaded from a backing store.
type Content struct {
	Questions []SourceQuestion      `json:"questions"`
	Challenge []SourceChallengeItem `json:"challenge"`
}

// Answer pairs a question with the option the player chose.
type Answer struct {
	ID       int       `json:"id"`
	Selected OptionKey `json:"selected"`
}

// CheckResult is the authoritative verdict for a single answer.
type CheckResult struct {
	Correct   OptionKey `json:"correct"`
	IsCorrect bool      `json:"is_correct"`
}

// LeaderboardItem is one scored entry as stored by the scoring backend.
type LeaderboardItem struct {
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitResult is the outcome of a score submission.
type SubmitResult struct {
	Score       int               `json:"score"`
	Total       int               `json:"total"`
	Leaderboard []LeaderboardItem `json:"leaderboard"`
}

// Lang selects a content language.
type Lang string

const (
	LangSwedish Lang = "sv"
	LangPolish  Lang = "pl"
)

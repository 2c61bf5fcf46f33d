package domain

import "errors"

var (
	// ErrContentNotFound indicates no quiz content exists for a language.
	ErrContentNotFound = errors.New("quiz content not found")
	// ErrQuestionNotFound indicates a submitted question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidOption indicates an option token outside 1/X/2.
	ErrInvalidOption = errors.New("invalid option key")
	// ErrEmptyName rejects score submissions without a player name.
	ErrEmptyName = errors.New("player name must not be empty")
	// ErrNameTooLong rejects player names over MaxPlayerNameLen runes.
	ErrNameTooLong = errors.New("player name too long")
)

// MaxPlayerNameLen caps the player name length, counted in runes.
const MaxPlayerNameLen = 40

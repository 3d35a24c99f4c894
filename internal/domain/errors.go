package domain

import "errors"

var (
	// ErrEmptyPool is returned when no valid questions are available to
	// start a session. Fatal to the start; never retried automatically.
	ErrEmptyPool = errors.New("question pool is empty")
	// ErrSessionNotFound is returned when a user acts without an active session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNoSelection is returned when advancing with no staged choice.
	ErrNoSelection = errors.New("no option selected for current question")
	// ErrNotComplete is returned when finishing a session still in progress.
	ErrNotComplete = errors.New("quiz session not complete")
	// ErrInvalidState is returned when selecting on a completed session.
	ErrInvalidState = errors.New("quiz session already complete")
	// ErrOptionOutOfRange is returned when a selected index does not name
	// an option of the current question.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrSourceUnavailable indicates questions could not be loaded from the
	// backing source; surfaced as a retryable condition.
	ErrSourceUnavailable = errors.New("question source unavailable")
	// ErrPersistence indicates a result record could not be durably written.
	// Non-fatal for the user: the score is still shown, the write is warned.
	ErrPersistence = errors.New("result persistence failed")
)

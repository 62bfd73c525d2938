package services

import "errors"

// Error taxonomy surfaced to handlers. Input errors, state conflicts and
// precondition failures are distinct so the caller can respond precisely;
// achievement failures never appear here because they are swallowed at the
// game-service boundary after logging.
var (
	// ErrNotFound marks an unknown session, session photo, photo or user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a malformed or out-of-range submission field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyAnswered marks a second guess against the same session photo.
	ErrAlreadyAnswered = errors.New("already answered")
	// ErrSessionFinished marks a guess against a finished session.
	ErrSessionFinished = errors.New("session already finished")
	// ErrNoCaptureDate marks a photo that has no ground-truth date and
	// therefore cannot be scored. A data-quality problem, not a wrong guess.
	ErrNoCaptureDate = errors.New("photo has no capture date")
	// ErrHintUnavailable marks a hint request for ground truth the photo
	// does not carry.
	ErrHintUnavailable = errors.New("hint unavailable")
)

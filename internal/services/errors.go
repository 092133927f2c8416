package services

import (
	"errors"
)

var (
	// Exam errors
	ErrExamLocked         = errors.New("exam is locked; answers can no longer change")
	ErrQuestionOutOfRange = errors.New("question number is outside the exam")
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrInvalidPart        = errors.New("invalid part number")

	// Submission errors
	ErrAlreadySubmitted = errors.New("attempt already submitted")

	// Timer errors
	ErrTimerExpired = errors.New("exam time has expired")

	// Audio errors
	ErrAudioNotFound       = errors.New("no audio registered for question")
	ErrReplayNotAllowed    = errors.New("audio replay is not allowed in exam mode")
	ErrSampleNotRegistered = errors.New("no sample audio registered")
)

// IsLocked reports whether err means the attempt no longer accepts changes.
func IsLocked(err error) bool {
	return errors.Is(err, ErrExamLocked) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrTimerExpired)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAudioNotFound) ||
		errors.Is(err, ErrSampleNotRegistered)
}

// IsBadInput reports whether err was caused by an invalid UI event.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrQuestionOutOfRange) ||
		errors.Is(err, ErrEmptyAnswer) ||
		errors.Is(err, ErrInvalidPart)
}

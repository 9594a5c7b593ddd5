package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrData signals empty or malformed questionnaire data.
	ErrData = errors.New("invalid questionnaire data")
	// ErrNotInitialized signals a call made before Initialize.
	ErrNotInitialized = errors.New("assessment is not initialized")
	// ErrInvalidAnswer signals an option id that does not belong to the current question.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrAlreadyComplete signals an answer submitted after the last question.
	ErrAlreadyComplete = errors.New("assessment is already complete")
)

// DataError describes which part of the questionnaire is malformed.
type DataError struct {
	QuestionID string
	OptionID   string
	Reason     string
}

func (e *DataError) Error() string {
	switch {
	case e.QuestionID != "" && e.OptionID != "":
		return fmt.Sprintf("%s: question %q option %q: %s", ErrData, e.QuestionID, e.OptionID, e.Reason)
	case e.QuestionID != "":
		return fmt.Sprintf("%s: question %q: %s", ErrData, e.QuestionID, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", ErrData, e.Reason)
	}
}

func (e *DataError) Unwrap() error { return ErrData }

// InvalidAnswerError carries the rejected option and the question it was meant for.
type InvalidAnswerError struct {
	QuestionID string
	OptionID   string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("%s: option %q is not an option of question %q", ErrInvalidAnswer, e.OptionID, e.QuestionID)
}

func (e *InvalidAnswerError) Unwrap() error { return ErrInvalidAnswer }

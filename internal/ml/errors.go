package ml

import "fmt"

// ConsentError reports an operation blocked by the user's consent settings.
// Callers surface it in the settings UI instead of logging and moving on.
type ConsentError struct {
	Operation string
}

func (e *ConsentError) Error() string {
	return fmt.Sprintf("consent denied for operation %s", e.Operation)
}

// InsufficientDataError reports a fine-tuning attempt with too little
// accumulated history. Callers treat it as "try again later".
type InsufficientDataError struct {
	Have int
	Want int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: have %d batches, want %d", e.Have, e.Want)
}

package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is wrapped by EmptyInputError.
	ErrEmptyInput = errors.New("text is empty after normalization")
	// ErrVectorSimilarity is returned by Cosine for a vector without any weight.
	ErrVectorSimilarity = errors.New("vector similarity is undefined for an empty vector")
)

// Sides of an EmptyInputError.
const (
	SideResume = "resume"
	SideJob    = "job description"
	SideBoth   = "resume and job description"
)

// EmptyInputError names the document that normalized to empty text.
type EmptyInputError struct {
	Side string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Side, ErrEmptyInput)
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

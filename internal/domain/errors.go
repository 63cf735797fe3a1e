package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrShape signals input of the wrong shape (unequal vector lengths, malformed ranked lists).
	ErrShape = errors.New("invalid input shape")
	// ErrInvalidValue signals an out-of-range input value (negative weight, negative limit).
	ErrInvalidValue = errors.New("invalid input value")
	// ErrInvalidRequest signals a request that failed validation before reaching the core.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPageNotFound signals a missing page.
	ErrPageNotFound = errors.New("page not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrKeywordSearchNotSupported signals that the backend lacks keyword search.
	ErrKeywordSearchNotSupported = errors.New("keyword search not supported by backend")
)

// ShapeError describes a length mismatch or malformed entry.
type ShapeError struct {
	Op     string
	Detail string
	Want   int
	Got    int
}

func (e *ShapeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, ErrShape.Error(), e.Detail)
	}
	return fmt.Sprintf("%s: %s: dimension %d != %d", e.Op, ErrShape.Error(), e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error { return ErrShape }

// NewDimensionMismatch reports two vectors of different length.
func NewDimensionMismatch(op string, want, got int) error {
	return &ShapeError{Op: op, Want: want, Got: got}
}

// NewMalformed reports a malformed input entry.
func NewMalformed(op, detail string) error {
	return &ShapeError{Op: op, Detail: detail}
}

// ValueError describes a parameter outside its allowed range.
type ValueError struct {
	Op    string
	Field string
	Value float64
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s=%g", e.Op, ErrInvalidValue.Error(), e.Field, e.Value)
}

func (e *ValueError) Unwrap() error { return ErrInvalidValue }

// NewValueError reports an invalid parameter value.
func NewValueError(op, field string, value float64) error {
	return &ValueError{Op: op, Field: field, Value: value}
}

package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRequest signals a malformed or missing request parameter.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidWeighting signals a weighting submission that failed validation.
	// The whole submission is rejected; nothing is persisted.
	ErrInvalidWeighting = errors.New("invalid weighting configuration")
	// ErrFeatureUnavailable signals a feature whose requirements are not met.
	ErrFeatureUnavailable = errors.New("feature requirements not met")
)

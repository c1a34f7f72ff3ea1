package web

import "errors"

var (
	// ErrFaqRepositoryRequired is returned when a FAQ repository is not provided.
	ErrFaqRepositoryRequired = errors.New("FAQ repository required")

	// ErrEngineRequired is returned when a matching engine is not provided.
	ErrEngineRequired = errors.New("matching engine required")
)

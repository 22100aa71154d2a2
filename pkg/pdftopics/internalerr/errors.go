package internalerr

import "errors"

// Sentinel errors for common cases
var (
	// ErrDecode marks extracted text that is not valid UTF-8. Callers skip the file.
	ErrDecode = errors.New("undecodable text")

	// ErrExtract marks a PDF the backend could not read (corrupt, encrypted, parser crash).
	ErrExtract = errors.New("extraction failed")

	// ErrEmptyCorpus is returned when training is attempted without documents or vocabulary.
	ErrEmptyCorpus = errors.New("empty corpus")

	ErrInvalidConfig = errors.New("invalid configuration")
)

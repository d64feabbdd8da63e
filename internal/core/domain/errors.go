package domain

import "errors"

// Domain errors represent business logic failures.
// Each operation reports one of these kinds so callers can pick a remedy
// (fix settings, rebuild the index, re-extract text, retry the provider).
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates invalid settings, an unknown embedding model,
	// or a vector dimension that does not match the index.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingArtifact indicates the vector index or its id mapping is absent.
	// Run 'novelcheck build-index' to create them.
	ErrMissingArtifact = errors.New("missing index artifact")

	// ErrInconsistentIndex indicates the index and mapping on disk do not
	// belong to the same build. It is always reported together with
	// ErrMissingArtifact.
	ErrInconsistentIndex = errors.New("index and mapping are out of sync")

	// ErrExtraction indicates no usable text could be extracted from a document.
	ErrExtraction = errors.New("text extraction failed")

	// ErrNoText indicates a document was read but holds no text. It is always
	// reported together with ErrExtraction.
	ErrNoText = errors.New("no text extracted")

	// ErrProviderUnavailable indicates the embedding provider failed or is unreachable.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrIO indicates a filesystem read or write failure.
	ErrIO = errors.New("i/o error")
)

// ErrorKind classifies errors by the remedy they require.
type ErrorKind string

// Error kinds, one per domain failure class.
const (
	KindConfiguration   ErrorKind = "configuration"
	KindMissingArtifact ErrorKind = "missing_artifact"
	KindExtraction      ErrorKind = "extraction"
	KindProvider        ErrorKind = "provider"
	KindIO              ErrorKind = "io"
	KindInvalidInput    ErrorKind = "invalid_input"
	KindUnknown         ErrorKind = "unknown"
)

// KindOf returns the kind of err. Missing artifacts are checked first because
// an inconsistent pair may also carry the underlying I/O cause.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingArtifact):
		return KindMissingArtifact
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrProviderUnavailable):
		return KindProvider
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// ExitCode maps an error kind to a process exit status.
func (k ErrorKind) ExitCode() int {
	switch k {
	case "":
		return 0
	case KindConfiguration, KindInvalidInput:
		return 2
	case KindMissingArtifact:
		return 3
	case KindExtraction:
		return 4
	case KindProvider:
		return 5
	case KindIO:
		return 6
	default:
		return 1
	}
}

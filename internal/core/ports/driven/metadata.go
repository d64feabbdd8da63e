package driven

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// MetadataSource reads the corpus documents in index order.
// Documents without a text source carry empty Text; only an unreadable
// metadata source is an error.
type MetadataSource interface {
	// Load returns the documents with sequential IDs starting at 0.
	Load(ctx context.Context) ([]domain.Document, error)

	// Path returns the metadata location.
	Path() string
}

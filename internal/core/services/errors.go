package services

import (
	"fmt"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// classify keeps already classified errors and wraps the rest with kind.
func classify(kind, err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

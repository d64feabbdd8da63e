package driving

import "github.com/custodia-labs/novelcheck/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key.
	Set(key, value string) error

	// Keys returns all recognised config keys in display order.
	Keys() []string

	// Validate checks the current settings.
	Validate() error

	// ValidateSettings checks settings that may carry per-run overrides.
	ValidateSettings(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}

package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/novelcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/services"
)

func TestMain(m *testing.M) {
	// Keep tests away from the user's ~/.novelcheck.
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	os.Exit(m.Run())
}

// resetSettings installs a fresh in-memory settings service for one test.
func resetSettings(t *testing.T, values map[string]any) *memory.ConfigStore {
	t.Helper()
	t.Setenv("NOVELCHECK_EMBEDDING_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	store := memory.NewConfigStore(values)
	original := settingsService
	settingsService = services.NewSettingsService(store, nil)
	t.Cleanup(func() { settingsService = original })
	return store
}

// resetFlags restores every flag to its default so state does not leak
// between executions of the shared rootCmd.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// executeCommand runs rootCmd with args and returns its combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// fakeRuntime replaces buildRuntime with one returning the given services.
type fakeRuntime struct {
	index      *mockIndexService
	novelty    *mockNoveltyService
	plagiarism *mockPlagiarismService

	settings     *domain.AppSettings
	withEmbedder bool
	calls        int
}

func installFakeRuntime(t *testing.T) *fakeRuntime {
	t.Helper()
	fake := &fakeRuntime{
		index:      &mockIndexService{},
		novelty:    &mockNoveltyService{},
		plagiarism: &mockPlagiarismService{},
	}
	original := buildRuntime
	buildRuntime = func(settings *domain.AppSettings, withEmbedder bool) (*runtime, error) {
		fake.settings = settings
		fake.withEmbedder = withEmbedder
		fake.calls++
		return &runtime{
			Settings:   settings,
			Index:      fake.index,
			Novelty:    fake.novelty,
			Plagiarism: fake.plagiarism,
		}, nil
	}
	t.Cleanup(func() { buildRuntime = original })
	return fake
}

// lines splits output into trimmed non-empty lines.
func lines(out string) []string {
	var result []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			result = append(result, l)
		}
	}
	return result
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/afiya/afiyacare/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testToken = "123456789:ABCdefGHIjklMNOpqrsTUVwxyz"

// executeCommand runs the root command with args and returns its output
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := GetRootCmd()
	resetFlags(t, cmd)

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return output.String(), err
}

// resetFlags restores every flag in the command tree to its default so
// values such as --help do not leak from one execution into the next
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, child := range cmd.Commands() {
		resetFlags(t, child)
	}
}

// writeTestConfig saves a config into a fresh directory and returns its path
func writeTestConfig(t *testing.T, mutate func(cfg *config.Config)) string {
	t.Helper()
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "afiya.json")
	cfg := config.DefaultConfig()
	cfg.Logging.Console = false
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.NewLoader(path).Save(cfg))
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AFIYA_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN",
		"AFIYA_DIAGNOSIS_BASE_URL", "API_BASE_URL",
		"AFIYA_HEALTH_PORT", "PORT",
		"AFIYA_LOGGING_LEVEL", "AFIYA_DATA_DIR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func hasCommand(name string) bool {
	for _, c := range GetRootCmd().Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

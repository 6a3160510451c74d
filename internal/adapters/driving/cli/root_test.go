package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// executeCommand runs the root command with args and captures output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetStores clears the cached store singletons and points the config
// and data directories at temp locations.
func resetStores(t *testing.T) {
	t.Helper()

	prevConfig, prevData := flagConfigDir, flagDataDir
	flagConfigDir = t.TempDir()
	flagDataDir = t.TempDir()
	configStore = nil
	credStore = nil

	t.Cleanup(func() {
		flagConfigDir, flagDataDir = prevConfig, prevData
		configStore = nil
		credStore = nil
	})
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "gdevutils", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "auth")
	assert.Contains(t, commandNames, "calendar")
	assert.Contains(t, commandNames, "drive")
	assert.Contains(t, commandNames, "sheets")
	assert.Contains(t, commandNames, "config")
	assert.Contains(t, commandNames, "mcp")
	assert.Contains(t, commandNames, "version")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "definitely-not-a-command")

	assert.Error(t, err)
}

func TestCurrentAccount_FlagWins(t *testing.T) {
	resetStores(t)

	cfg, err := ensureConfig()
	assert.NoError(t, err)
	assert.NoError(t, cfg.Set("account", "configured@example.com"))

	flagAccount = "flag@example.com"
	defer func() { flagAccount = "" }()

	assert.Equal(t, "flag@example.com", currentAccount(cfg))
}

func TestCurrentAccount_FallsBackToConfig(t *testing.T) {
	resetStores(t)

	cfg, err := ensureConfig()
	assert.NoError(t, err)
	assert.NoError(t, cfg.Set("account", "configured@example.com"))

	assert.Equal(t, "configured@example.com", currentAccount(cfg))
}

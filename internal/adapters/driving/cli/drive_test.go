package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elemental-reasoning/gdevutils/gdrive"
)

func TestDriveCmd_HasSubcommands(t *testing.T) {
	commands := driveCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "create")
}

func TestDriveTypeFlagDefaults(t *testing.T) {
	listFlag := driveListCmd.Flags().Lookup("type")
	require.NotNil(t, listFlag)
	assert.Equal(t, "", listFlag.DefValue, "list shows all files by default")
	assert.Equal(t, "", driveListType)

	createFlag := driveCreateCmd.Flags().Lookup("type")
	require.NotNil(t, createFlag)
	assert.Equal(t, "doc", createFlag.DefValue)
	assert.Equal(t, "doc", driveCreateType)
}

func TestDriveCreateCmd_RequiresArg(t *testing.T) {
	_, err := executeCommand(t, "drive", "create")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "doc", input: "doc", want: gdrive.MimeTypeDoc},
		{name: "document alias", input: "document", want: gdrive.MimeTypeDoc},
		{name: "sheet", input: "sheet", want: gdrive.MimeTypeSheet},
		{name: "spreadsheet alias", input: "spreadsheet", want: gdrive.MimeTypeSheet},
		{name: "slides", input: "slides", want: gdrive.MimeTypeSlides},
		{name: "folder", input: "folder", want: gdrive.MimeTypeFolder},
		{name: "unknown", input: "video", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mimeTypeFor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

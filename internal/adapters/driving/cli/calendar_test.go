package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarCmd_HasSubcommands(t *testing.T) {
	commands := calendarCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "events")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "delete")
}

func TestCalendarDeleteCmd_RequiresArg(t *testing.T) {
	_, err := executeCommand(t, "calendar", "delete")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestParseLocalTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "minutes precision",
			input: "2026-09-01T09:30",
			want:  time.Date(2026, 9, 1, 9, 30, 0, 0, time.Local),
		},
		{
			name:  "seconds precision",
			input: "2026-09-01T09:30:15",
			want:  time.Date(2026, 9, 1, 9, 30, 15, 0, time.Local),
		},
		{
			name:    "date only",
			input:   "2026-09-01",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "tomorrow",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLocalTime(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := parseDateRange("2026-09-01", "2026-09-07")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local), end)
}

func TestParseDateRange_MissingToDefaultsToFrom(t *testing.T) {
	start, end, err := parseDateRange("2026-09-01", "")

	require.NoError(t, err)
	assert.Equal(t, start, end)
}

func TestParseDateRange_Invalid(t *testing.T) {
	_, _, err := parseDateRange("September 1st", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --from")
}

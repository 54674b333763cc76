package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/reporting"
)

func TestCoverageColor(t *testing.T) {
	tests := []struct {
		name     string
		placed   int
		required int
		want     string
	}{
		{"nothing required", 0, 0, colorGreen},
		{"complete", 10, 10, colorGreen},
		{"exactly 80 percent", 8, 10, colorYellow},
		{"below 80 percent", 7, 10, colorRed},
		{"nothing placed", 0, 5, colorRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coverageColor(tt.placed, tt.required))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 100.0, percent(0, 0))
	assert.Equal(t, 50.0, percent(2, 4))
}

func TestWriteEntries(t *testing.T) {
	var buf bytes.Buffer
	err := writeEntries(&buf, []model.ScheduleEntry{{
		ID: "e1", Day: time.Monday, Start: "07:00", End: "08:00",
		TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1", Origin: model.Generated,
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "DAY"))
	assert.Equal(t, []string{"Monday", "07:00-08:00", "t1", "s1", "g1", "r1", "GENERADO"}, strings.Fields(lines[1]))
}

func TestPrintView(t *testing.T) {
	t.Run("empty view", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printView(&buf, &reporting.View{Cycle: "2025-A"}))
		assert.Contains(t, buf.String(), "Cycle 2025-A has no schedule entries")
	})

	t.Run("sections", func(t *testing.T) {
		var buf bytes.Buffer
		view := &reporting.View{Cycle: "2025-A", Sections: []reporting.Section{
			{Key: "t1", Label: "Ana Ruiz", Hours: 1, Entries: []model.ScheduleEntry{{ID: "e1", Day: time.Monday, Start: "07:00", End: "08:00"}}},
		}}
		require.NoError(t, printView(&buf, view))
		assert.Contains(t, buf.String(), "Ana Ruiz (1 hours)")
	})
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), ""))
		})
	}
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"plain", "generate --cycle 2025-A", []string{"generate", "--cycle", "2025-A"}, false},
		{"double quotes", `validate -f "my entries.json"`, []string{"validate", "-f", "my entries.json"}, false},
		{"single quotes", `export --out 'a b.xlsx'`, []string{"export", "--out", "a b.xlsx"}, false},
		{"extra spaces", "  stats   -c  X ", []string{"stats", "-c", "X"}, false},
		{"unclosed quote", `export --out "a.xlsx`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithCycle(t *testing.T) {
	var cycle string
	withFlag := &cobra.Command{Use: "stats"}
	addCycleFlag(withFlag, &cycle)
	withoutFlag := &cobra.Command{Use: "serve"}

	assert.Equal(t, []string{"--cycle", "2025-A"}, withCycle(withFlag, nil, "2025-A"))
	assert.Equal(t, []string{"-c", "2026-B"}, withCycle(withFlag, []string{"-c", "2026-B"}, "2025-A"))
	assert.Equal(t, []string{"--cycle=2026-B"}, withCycle(withFlag, []string{"--cycle=2026-B"}, "2025-A"))
	assert.Empty(t, withCycle(withFlag, nil, ""))
	assert.Empty(t, withCycle(withoutFlag, nil, "2025-A"))
}

func TestRunSession(t *testing.T) {
	var cycle string
	var calls []string
	stats := &cobra.Command{
		Use:  "stats",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calls = append(calls, cycle)
			return nil
		},
	}
	addCycleFlag(stats, &cycle)

	input := strings.Join([]string{
		"stats",
		"use 2025-A",
		"stats",
		"stats -c 2026-B",
		"unknown",
		"stats",
		"exit",
		"stats",
	}, "\n")

	err := runSession(strings.NewReader(input), map[string]*cobra.Command{"stats": stats})
	require.NoError(t, err)

	// the first call fails on the missing required flag; nothing runs after exit
	assert.Equal(t, []string{"2025-A", "2026-B", "2025-A"}, calls)
}

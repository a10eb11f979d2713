package commands

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	info := BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"}

	tests := []struct {
		name    string
		format  string
		wantOut []string
	}{
		{
			name:    "markdown",
			format:  "markdown",
			wantOut: []string{"LeapQuery v1.2.3", "SQL renderer", "commit abc123, built 2026-01-02", "postgresql"},
		},
		{
			name:    "text",
			format:  "text",
			wantOut: []string{"LeapQuery v1.2.3", runtime.Version()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewVersionCommand(info), newConfig(t, "", tt.format))
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, NewVersionCommand(info), newConfig(t, "", "json"))
		require.NoError(t, err)

		var got struct {
			Version  string   `json:"version"`
			Commit   string   `json:"commit"`
			Date     string   `json:"build_date"`
			Go       string   `json:"go"`
			Dialects []string `json:"dialects"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "1.2.3", got.Version)
		assert.Equal(t, "abc123", got.Commit)
		assert.Equal(t, runtime.Version(), got.Go)
		assert.Contains(t, got.Dialects, "sqlite")
	})

	t.Run("without stored config", func(t *testing.T) {
		cmd := NewVersionCommand(info)
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(nil)
		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "LeapQuery v1.2.3")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, err := execute(t, NewVersionCommand(info), newConfig(t, "", "text"), "extra")
		require.Error(t, err)
	})
}

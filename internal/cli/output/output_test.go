package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_AutoIsMarkdownOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.Mode())
}

func TestRenderer_Table(t *testing.T) {
	headers := []string{"name", "age"}
	rows := [][]any{{"Alpha", int64(10)}, {[]byte("Beta"), nil}}

	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeText, []string{"NAME", "Alpha", "Beta", "NULL"}},
		{ModeMarkdown, []string{"| name | age |", "| Alpha | 10 |", "| Beta | NULL |"}},
		{ModeJSON, []string{`"name": "Beta"`, `"age": null`, `"age": 10`}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRenderer(&buf, &buf, tt.mode)
			require.NoError(t, r.Table(headers, rows))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestRenderer_Section(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, &buf, ModeText).Section("SQL", "SELECT 1")
	assert.Equal(t, "SQL:\n  SELECT 1\n", buf.String())

	buf.Reset()
	NewRenderer(&buf, &buf, ModeMarkdown).Section("SQL", "SELECT 1")
	assert.Equal(t, "## SQL\n\n```\nSELECT 1\n```\n\n", buf.String())
}

func TestRenderer_Warn(t *testing.T) {
	var out, errOut bytes.Buffer
	NewRenderer(&out, &errOut, ModeText).Warn("no rows for %s", "x")
	assert.Empty(t, out.String())
	assert.Equal(t, "Warning: no rows for x\n", errOut.String())
}

// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/internal/testutil"
)

// projectConfig points the CLI at the sample metamodel and a SQLite file
// seeded with the sample rows.
const projectConfig = `metamodel: metamodel.yaml
target:
  type: sqlite
  database: sample.db
environments:
  memory:
    target:
      database: ":memory:"
`

// SetupTestProject creates a temporary project holding leapquery.yaml, the
// sample metamodel and a seeded sample.db. It returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	write("leapquery.yaml", []byte(projectConfig))
	write("metamodel.yaml", testutil.SampleModelYAML())
	testutil.CreateSampleDB(t, filepath.Join(dir, "sample.db"))

	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a renderer in mode whose output is captured.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the captured stdout.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the captured stderr.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

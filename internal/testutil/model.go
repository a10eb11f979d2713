package testutil

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/metamodel"
)

//go:embed testdata/model.yaml
var sampleModel []byte

// SampleModel returns the Person/Employee/Document/Cat model used across tests.
func SampleModel(t testing.TB) *metamodel.Model {
	t.Helper()
	m, err := metamodel.Load(bytes.NewReader(sampleModel))
	if err != nil {
		t.Fatalf("load sample model: %v", err)
	}
	return m
}

// SampleModelYAML returns the YAML definition behind SampleModel.
func SampleModelYAML() []byte {
	return bytes.Clone(sampleModel)
}

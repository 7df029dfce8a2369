package synonyms

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAML(t *testing.T) {
	m, err := Parse([]byte(`
Essential Tremor:
  - essential tremor
  - benign tremor
  - Benign Tremor
  - ""
Parkinson Disease: [parkinson disease, parkinsonism]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"essential tremor", "benign tremor"}, m.Lookup("essential tremor"))
	assert.Equal(t, []string{"parkinson disease", "parkinsonism"}, m.Lookup("PARKINSON DISEASE"))
	assert.Nil(t, m.Lookup("Asthma"))
}

func TestParse_JSON(t *testing.T) {
	m, err := Parse([]byte(`{"Asthma": ["asthma", "wheeze"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"asthma", "wheeze"}, m.Lookup("Asthma"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("Asthma: [unclosed"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Asthma:\n  - asthma\n"), 0o644))
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"asthma"}, m.Lookup("asthma"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNilMapLookup(t *testing.T) {
	var m Map
	assert.Nil(t, m.Lookup("Asthma"))
	assert.Empty(t, m.Clone())
}

type fakeLookup struct {
	terms map[string][]string
	calls []string
}

func (f *fakeLookup) EntryTerms(_ context.Context, desc string) ([]string, error) {
	f.calls = append(f.calls, desc)
	terms, ok := f.terms[desc]
	if !ok {
		return nil, errors.New("not found")
	}
	return terms, nil
}

func TestExpand(t *testing.T) {
	base := Map{}
	base.Add("Asthma", "asthma", "wheeze")
	f := &fakeLookup{terms: map[string][]string{
		"Essential Tremor": {"Tremor, Essential", "Benign Essential Tremor"},
	}}

	out, err := Expand(context.Background(), f, []string{"Asthma", "Essential Tremor", "Unknown"}, base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Unknown"`)
	assert.Equal(t, []string{"Essential Tremor", "Unknown"}, f.calls)
	assert.Equal(t, []string{"Essential Tremor", "Tremor, Essential", "Benign Essential Tremor"}, out.Lookup("essential tremor"))
	assert.Equal(t, []string{"asthma", "wheeze"}, out.Lookup("Asthma"))
	assert.Nil(t, base.Lookup("Essential Tremor"), "input map must not change")
}

func TestExpand_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeLookup{}
	_, err := Expand(ctx, f, []string{"Asthma"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.calls)
}

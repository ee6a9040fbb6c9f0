package measurement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Document(t *testing.T) {
	set, err := Decode([]byte(`{
		// produced by the bench runner
		"benchmarks": [
			{"name": "server_startup_avg", "value": 1.5, "unit": "seconds"},
			{"name": "sustained_tick_rate_with_plugins", "value": 19.8, "unit": "tps", "lower_is_better": false},
		]
	}`))
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	startup, ok := set.Get("server_startup_avg")
	require.True(t, ok)
	assert.True(t, startup.LowerIsBetter, "lower_is_better defaults to true")

	tick, ok := set.Get("sustained_tick_rate_with_plugins")
	require.True(t, ok)
	assert.False(t, tick.LowerIsBetter)
}

func TestDecode_BareArray(t *testing.T) {
	set, err := Decode([]byte(`[{"name": "x", "value": 1, "unit": "ms"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, set.Names())
}

func TestDecode_DuplicateNamesLastWins(t *testing.T) {
	set, err := Decode([]byte(`{"benchmarks": [
		{"name": "a", "value": 1, "unit": "ms"},
		{"name": "b", "value": 2, "unit": "ms"},
		{"name": "a", "value": 3, "unit": "ms"}
	]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, set.Names())
	a, _ := set.Get("a")
	assert.Equal(t, 3.0, a.Value)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"benchmarks": [{"value": 1}]}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"benchmarks": `))
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	set, err := Decode([]byte("  "))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadOptional_Missing(t *testing.T) {
	set, err := LoadOptional(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadOptional_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadOptional(path)
	assert.Error(t, err)
}

func TestNilSet(t *testing.T) {
	var set *Set
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.All())
	_, ok := set.Get("x")
	assert.False(t, ok)
}

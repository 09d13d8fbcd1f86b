package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDecodesAllFields(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
scenarios = ["linear_growth", "multithread"]
threads = 16
iterations = 500
profile = "reduced"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"linear_growth", "multithread"}, cfg.Scenarios)
	assert.Equal(t, 16, cfg.Threads)
	assert.Equal(t, 500, cfg.Iterations)
	assert.Equal(t, "reduced", cfg.Profile)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []Config{
		{Threads: 0, Iterations: 1, Profile: "full", Scenarios: []string{"s"}},
		{Threads: 1, Iterations: 0, Profile: "full", Scenarios: []string{"s"}},
		{Threads: 1, Iterations: 1, Profile: "bogus", Scenarios: []string{"s"}},
		{Threads: 1, Iterations: 1, Profile: "full", Scenarios: nil},
	}
	for _, c := range cases {
		assert.Error(t, c.Validate())
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
scenarios = ["linear_growth"]
threads = 4
iterations = 10
profile = "full"
`)

	updates := make(chan Config, 4)
	w, err := Watch(path, func(c Config) { updates <- c })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`
scenarios = ["linear_growth", "multithread"]
threads = 8
iterations = 20
profile = "full"
`), 0o644))

	select {
	case cfg := <-updates:
		assert.Equal(t, 8, cfg.Threads)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

package options

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOptions(t *testing.T) *ServerOptions {
	t.Helper()
	dir := t.TempDir()
	o := NewServerOptions()
	o.IntakeOptions.UploadDir = filepath.Join(dir, "uploads")
	o.IntakeOptions.KnowledgeDir = filepath.Join(dir, "knowledge_base")
	o.LedgerOptions.DSN = filepath.Join(dir, "ledger.db")
	return o
}

func TestDefaultsAreValid(t *testing.T) {
	o := newTestOptions(t)
	require.NoError(t, o.Complete())
	assert.NoError(t, o.Validate())

	assert.DirExists(t, o.IntakeOptions.UploadDir)
	assert.DirExists(t, o.IntakeOptions.KnowledgeDir)
}

func TestValidateAggregatesErrors(t *testing.T) {
	o := newTestOptions(t)
	require.NoError(t, o.Complete())
	o.HTTPOptions.Addr = ""
	o.LedgerOptions.Driver = "oracle"
	o.AnalyzerOptions.Clusters = 0

	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.addr")
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "analyzer.clusters")
}

func TestFlags(t *testing.T) {
	o := newTestOptions(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--http.addr=:8080",
		"--model.model=mistral",
		"--cache.redis.port=6380",
		"--shutdown-timeout=5s",
	}))
	assert.Equal(t, ":8080", o.HTTPOptions.Addr)
	assert.Equal(t, "mistral", o.ModelOptions.Model)
	assert.Equal(t, 6380, o.CacheOptions.Redis.Port)
	assert.Equal(t, "5s", o.ShutdownTimeout.String())

	cfg, err := o.Config()
	require.NoError(t, err)
	assert.Same(t, o.HTTPOptions, cfg.HTTPOptions)
}

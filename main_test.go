package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "worker", "process", "migrate"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("worker"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestProcessCommandWithMemoryDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("GO_ENV", "test")
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("REDIS_URL", "")

	root := newRootCommand()
	root.SetArgs([]string{"process", "--env-file", ""})
	assert.NoError(t, root.Execute())
}

func TestMigrateRejectsMemoryDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("GO_ENV", "test")

	root := newRootCommand()
	root.SetArgs([]string{"migrate", "--env-file", ""})
	root.SetErr(io.Discard)
	assert.Error(t, root.Execute())
}

func TestEnvFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_DRIVER=memory\nPROCESSOR_CONCURRENCY=2\n"), 0o600))
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "")
	require.NoError(t, os.Unsetenv("DB_DRIVER"))
	t.Setenv("PROCESSOR_CONCURRENCY", "")
	require.NoError(t, os.Unsetenv("PROCESSOR_CONCURRENCY"))

	cfg, loggerInstance, err := bootstrap(rootFlags{envFile: envFile})
	require.NoError(t, err)
	defer syncLogger(loggerInstance)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 2, cfg.Processor.Concurrency)
}

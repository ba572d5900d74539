package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENR_RUNTIME", "ENR_ENGINE", "ENR_IMAGE", "ENR_MOUNT_PATH", "ENR_TMPDIR", "ENR_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, DefaultRuntime, cfg.Runtime)
	assert.Equal(t, DefaultEngine, cfg.Engine)
	assert.Equal(t, DefaultImage, cfg.Image)
	assert.Equal(t, DefaultMountPath, cfg.MountPath)
	assert.Equal(t, "", cfg.TempDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.NotEmpty(t, cfg.Version)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENR_RUNTIME", "podman")
	t.Setenv("ENR_ENGINE", "api")
	t.Setenv("ENR_IMAGE", " nginx:1.27 ")
	t.Setenv("ENR_TMPDIR", "/var/tmp")

	cfg := Load()
	assert.Equal(t, "podman", cfg.Runtime)
	assert.Equal(t, "api", cfg.Engine)
	assert.Equal(t, "nginx:1.27", cfg.Image)
	assert.Equal(t, "/var/tmp", cfg.TempDir)
}

func TestVersionLinkerValueWins(t *testing.T) {
	prev := version
	t.Cleanup(func() { version = prev })

	version = "v9.9.9"
	assert.Equal(t, "v9.9.9", Version())
	assert.Equal(t, "v9.9.9", Load().Version)
}

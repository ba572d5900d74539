package config

import (
	"os"
	"runtime/debug"
	"strings"
)

// Set at link time: -ldflags "-X enr/internal/config.version=v1.2.3"
var version = ""

const (
	DefaultRuntime   = "docker"
	DefaultEngine    = "cli"
	DefaultImage     = "nginx:stable-alpine"
	DefaultMountPath = "/etc/nginx/conf.d/default.conf"
	DefaultLogLevel  = "warn"
	NamePrefix       = "enr-"
)

// Config is read once at startup and passed down explicitly. Command line
// flags override its fields per invocation.
type Config struct {
	Version   string
	Runtime   string
	Engine    string
	Image     string
	MountPath string
	TempDir   string
	LogLevel  string
}

// Load applies ENR_* environment overrides on top of the defaults.
func Load() Config {
	return Config{
		Version:   Version(),
		Runtime:   env("ENR_RUNTIME", DefaultRuntime),
		Engine:    env("ENR_ENGINE", DefaultEngine),
		Image:     env("ENR_IMAGE", DefaultImage),
		MountPath: env("ENR_MOUNT_PATH", DefaultMountPath),
		TempDir:   env("ENR_TMPDIR", ""),
		LogLevel:  env("ENR_LOG_LEVEL", DefaultLogLevel),
	}
}

// Version prefers the linker-stamped value, then the module version go
// install records.
func Version() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

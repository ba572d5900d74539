package nginxconf

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	clog "enr/utils/log" //custom log
)

// Regular expression to replace all symbols that are invalid in the domain name to dots
var dnsReplaceSymbolsRegexp = regexp.MustCompile("[^a-zA-Z0-9-.]+")
var dnsReplaceRepeatedSymbols = regexp.MustCompile("([-.])[-.]+")

// NormalizeName turns an arbitrary domain argument into something usable in
// file and container names.
func NormalizeName(name string) string {
	nameWithOnlyValidChars := dnsReplaceSymbolsRegexp.ReplaceAllLiteral([]byte(name), []byte("."))
	nameWithSingleChars := dnsReplaceRepeatedSymbols.ReplaceAll(nameWithOnlyValidChars, []byte("$1"))
	return strings.ToLower(strings.Trim(string(nameWithSingleChars), ".-"))
}

// TempConfig is a rendered config on disk for the duration of one
// invocation.
type TempConfig struct {
	Path string
	kept bool
}

// WriteTemp stores content under a unique name in dir (os.TempDir when empty).
func WriteTemp(dir, domain, content string) (*TempConfig, error) {
	name := NormalizeName(domain)
	if name == "" {
		name = "site"
	}

	f, err := os.CreateTemp(dir, fmt.Sprintf("enr-%s-*.conf", name))
	if err != nil {
		return nil, fmt.Errorf("failed to create config file: %w", err)
	}
	tc := &TempConfig{Path: f.Name()}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		tc.Cleanup()
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}
	if err := f.Close(); err != nil {
		tc.Cleanup()
		return nil, fmt.Errorf("failed to close config file: %w", err)
	}
	// CreateTemp uses 0600; nginx workers in the container run as another user.
	if err := os.Chmod(tc.Path, 0644); err != nil {
		tc.Cleanup()
		return nil, fmt.Errorf("failed to chmod config file: %w", err)
	}

	clog.Debug("Config written", "path", tc.Path, "bytes", len(content))
	return tc, nil
}

// Keep makes Cleanup a no-op.
func (tc *TempConfig) Keep() {
	tc.kept = true
}

func (tc *TempConfig) Kept() bool {
	return tc.kept
}

// Cleanup removes the file unless it was kept. Safe to call more than once.
func (tc *TempConfig) Cleanup() error {
	if tc == nil || tc.kept || tc.Path == "" {
		return nil
	}
	err := os.Remove(tc.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}
	clog.Debug("Config removed", "path", tc.Path)
	return nil
}

package main

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"quill/internal/config"
)

var (
	readmeConfigKeyRe = regexp.MustCompile("(?m)^- `([a-z_.]+)`")
	readmeEnvKeyRe    = regexp.MustCompile(`QUILL_[A-Z0-9_]+`)
	readmeCommandRe   = regexp.MustCompile(`^quill((?: [a-z][a-z-]*)+)`)
)

func TestReadmeConfigKeysMatchAllowedKeys(t *testing.T) {
	section := readmeSection(t, "Supported config keys:", "Runtime environment:")

	var documented []string
	for _, m := range readmeConfigKeyRe.FindAllStringSubmatch(section, -1) {
		documented = append(documented, m[1])
	}
	allowed := slices.Clone(config.AllowedKeys())
	slices.Sort(documented)
	slices.Sort(allowed)
	if !slices.Equal(documented, allowed) {
		t.Fatalf("README config keys mismatch\ndocumented: %v\nallowed:    %v", documented, allowed)
	}
}

func TestReadmeCommandsMatchCLI(t *testing.T) {
	section := readmeSection(t, "## Commands", "## Web routes")

	var documented []string
	for _, line := range strings.Split(section, "\n") {
		if m := readmeCommandRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			documented = append(documented, strings.TrimSpace(m[1]))
		}
	}

	cfg := config.Default()
	actual := leafCommandPaths(newRootCmd(&cfg), "")

	slices.Sort(documented)
	documented = slices.Compact(documented)
	slices.Sort(actual)
	if !slices.Equal(documented, actual) {
		t.Fatalf("README command mismatch\ndocumented: %v\ncli:        %v", documented, actual)
	}
}

func TestReadmeDocumentsEnvironment(t *testing.T) {
	documented := readmeEnvKeyRe.FindAllString(readme(t), -1)
	for _, key := range []string{
		"QUILL_DB", "QUILL_BACKUP_DIR", "QUILL_HOST", "QUILL_PORT", "QUILL_DEBUG",
		logLevelEnvKey, logFormatEnvKey,
		"QUILL_CONFIG_DIR", "QUILL_TRUST_PROJECT_CONFIG", "QUILL_ENV_FILE", "QUILL_ALLOW_REMOTE",
		"QUILL_DB_MAX_OPEN_CONNS", "QUILL_DB_CONN_MAX_LIFETIME", "QUILL_HTTP_TIMEOUT",
	} {
		if !slices.Contains(documented, key) {
			t.Errorf("README does not document %s", key)
		}
	}
}

func leafCommandPaths(cmd *cobra.Command, prefix string) []string {
	var paths []string
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		path := strings.TrimSpace(prefix + " " + child.Name())
		if sub := leafCommandPaths(child, path); len(sub) > 0 {
			paths = append(paths, sub...)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func readmeSection(t *testing.T, start, end string) string {
	t.Helper()
	text := readme(t)
	_, after, ok := strings.Cut(text, start)
	if !ok {
		t.Fatalf("README is missing %q", start)
	}
	section, _, _ := strings.Cut(after, end)
	return section
}

func readme(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "..", "README.md"))
	if err != nil {
		t.Fatalf("read README.md: %v", err)
	}
	return string(data)
}

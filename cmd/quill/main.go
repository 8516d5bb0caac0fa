package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"quill/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// cliError is the --json form of a failed command.
type cliError struct {
	Error string   `json:"error"`
	Hints []string `json:"hints,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and returns the process exit code. Errors,
// including config load failures, go to stderr with their hints.
func run(args []string, stderr io.Writer) int {
	jsonOutput := jsonRequested(args)

	cfg, err := config.Load()
	if err != nil {
		reportError(stderr, err, jsonOutput)
		return 1
	}
	if cfg.TrustedProjectConfigPath != "" {
		fmt.Fprintf(stderr, "warning: using trusted project config from %s\n", cfg.TrustedProjectConfigPath)
	}

	cmd := newRootCmd(cfg)
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		reportError(stderr, err, jsonOutput)
		return 1
	}
	return 0
}

func reportError(w io.Writer, err error, jsonOutput bool) {
	lines := formatCLIError(err)
	if jsonOutput {
		payload := cliError{Error: lines[0]}
		for _, line := range lines[1:] {
			payload.Hints = append(payload.Hints, strings.TrimPrefix(line, "hint: "))
		}
		if outputFormatter.Write(w, payload) == nil {
			return
		}
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// jsonRequested scans args for the global --json flag. It runs before
// cobra parses flags so config load failures honour it too.
func jsonRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "--json" {
			return true
		}
		if value, ok := strings.CutPrefix(arg, "--json="); ok {
			enabled, err := strconv.ParseBool(value)
			return err == nil && enabled
		}
	}
	return false
}

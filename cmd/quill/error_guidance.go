package main

import (
	"context"
	"errors"
	"net"
	"os"

	"quill/internal/api"
	"quill/internal/store"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify --remote points to a quill server.")
		}
		if apiErr.NotFound() {
			lines = append(lines, "hint: list posts with: quill post list --remote <url>")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	var verr *store.ValidationError
	if errors.As(err, &verr) {
		if verr.Field == "sort" || verr.Field == "order" {
			lines = append(lines, "hint: sort by date, views, likes, title or author; order is asc or desc.")
		}
		return uniqueLines(lines)
	}

	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		lines = append(lines, "hint: list posts with: quill post list")
		return uniqueLines(lines)
	}

	var ioErr *store.IOError
	if errors.As(err, &ioErr) {
		if errors.Is(ioErr.Err, os.ErrPermission) {
			lines = append(lines, "hint: check file permissions for "+ioErr.Path+".")
		}
		if errors.Is(ioErr.Err, os.ErrNotExist) {
			lines = append(lines, "hint: check that "+ioErr.Path+" exists.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase QUILL_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a quill server is running at the --remote URL.",
			"hint: start a local server with: quill serve",
			"hint: you can increase QUILL_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

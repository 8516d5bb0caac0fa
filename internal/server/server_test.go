package server

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"quill/internal/store"
)

func TestListenAddrRemoteGuard(t *testing.T) {
	t.Run("allows loopback", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("127.0.0.1", 8004)
		if err != nil {
			t.Fatalf("expected loopback to be allowed, got error: %v", err)
		}
		if addr != "127.0.0.1:8004" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("allows localhost", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		if _, err := ListenAddr("localhost", 8004); err != nil {
			t.Fatalf("expected localhost to be allowed, got error: %v", err)
		}
	})

	t.Run("blocks non-loopback by default", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		if _, err := ListenAddr("0.0.0.0", 8004); err == nil {
			t.Fatal("expected error for non-loopback listen host")
		}
		if _, err := ListenAddr("", 8004); err == nil {
			t.Fatal("expected error for wildcard listen host")
		}
	})

	t.Run("allows non-loopback when explicitly enabled", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "true")
		addr, err := ListenAddr("0.0.0.0", 8004)
		if err != nil {
			t.Fatalf("expected allow-remote to permit host, got error: %v", err)
		}
		if addr != "0.0.0.0:8004" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("rejects invalid port", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		for _, port := range []int{0, -1, 70000} {
			if _, err := ListenAddr("127.0.0.1", port); err == nil {
				t.Fatalf("expected error for port %d", port)
			}
		}
	})
}

func TestNewParsesEveryPage(t *testing.T) {
	srv, err := New("127.0.0.1:0", nil, Options{}, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	for _, page := range []string{"index", "blogs", "add_blog", "view_blog", "author", "about", "error"} {
		if _, ok := srv.templates[page]; !ok {
			t.Fatalf("missing template %q", page)
		}
	}
	if srv.siteName != "Blog App" {
		t.Fatalf("expected default site name, got %q", srv.siteName)
	}
}

// testServer builds a server over a fresh on-disk store.
func testServer(t *testing.T, opts Options) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New("127.0.0.1:0", st, opts, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, st
}

// seedServer loads the demo data into the server's store.
func seedServer(t *testing.T, st *store.Store) {
	t.Helper()
	err := st.WithSession(context.Background(), func(bs store.BlogStore) error {
		_, err := bs.SeedDemoData(context.Background())
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

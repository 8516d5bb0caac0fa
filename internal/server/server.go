package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"quill/internal/store"
)

const (
	allowRemoteEnvKey = "QUILL_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options holds presentation settings for the server.
type Options struct {
	SiteName string
	// Debug exposes internal error messages on error pages.
	Debug bool
}

// Server wraps the HTTP handlers for the blog.
type Server struct {
	addr      string
	sessions  store.SessionProvider
	siteName  string
	debug     bool
	logger    *slog.Logger
	templates map[string]*template.Template
}

// New creates a new server instance.
func New(addr string, sessions store.SessionProvider, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	siteName := strings.TrimSpace(opts.SiteName)
	if siteName == "" {
		siteName = "Blog App"
	}

	return &Server{
		addr:      addr,
		sessions:  sessions,
		siteName:  siteName,
		debug:     opts.Debug,
		logger:    logger,
		templates: templates,
	}, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withRequestLogging(s.withRecovery(s.routes())))
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr, "debug", s.debug)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr joins host and port into a listen address. Non-loopback hosts
// are refused unless QUILL_ALLOW_REMOTE=true.
func ListenAddr(host string, port int) (string, error) {
	host = strings.TrimSpace(host)
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	if !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		// An empty host binds every interface.
		return allowRemote()
	}
	if allowRemote() {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func allowRemote() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true")
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

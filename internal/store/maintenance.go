package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	backupNameLayout    = "20060102_150405"
	backupCheckpointTry = 3
)

var sqliteHeader = []byte("SQLite format 3\x00")

// Stats summarizes the stored content.
type Stats struct {
	Authors       int64 `json:"authors"`
	Blogs         int64 `json:"blogs"`
	Published     int64 `json:"published"`
	Featured      int64 `json:"featured"`
	TotalViews    int64 `json:"total_views"`
	TotalLikes    int64 `json:"total_likes"`
	SchemaVersion int   `json:"schema_version"`
	SizeBytes     int64 `json:"size_bytes"`
}

// BackupResult describes a finished backup.
type BackupResult struct {
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Digest    string    `json:"blake2b_256"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats returns content totals and the schema version.
func (s *Session) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&stats.Authors); err != nil {
		return nil, err
	}
	err := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(published), 0),
			COALESCE(SUM(featured), 0),
			COALESCE(SUM(view_count), 0),
			COALESCE(SUM(like_count), 0)
		FROM blogs
	`).Scan(&stats.Blogs, &stats.Published, &stats.Featured, &stats.TotalViews, &stats.TotalLikes)
	if err != nil {
		return nil, err
	}

	version, err := currentVersion(ctx, s.conn)
	if err != nil {
		return nil, err
	}
	stats.SchemaVersion = version

	var pageCount, pageSize int64
	if err := s.conn.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, err
	}
	if err := s.conn.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, err
	}
	stats.SizeBytes = pageCount * pageSize
	return stats, nil
}

// Backup writes a byte-identical copy of the database file to destination.
// When destination is an existing directory, or ends in a path separator,
// the copy is named blog_backup_YYYYMMDD_HHMMSS.db inside it. Writers are
// held off for the duration of the copy.
func (s *Store) Backup(ctx context.Context, destination string) (*BackupResult, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, &IOError{Op: "backup", Path: s.path, Err: err}
	}

	now := time.Now()
	target, err := backupTarget(destination, now)
	if err != nil {
		return nil, err
	}

	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	tx, err := sess.lockForBackup(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	size, digest, err := copyWithDigest(s.path, target)
	if err != nil {
		return nil, err
	}
	if err := verifyDigest(target, digest); err != nil {
		_ = os.Remove(target)
		return nil, err
	}

	return &BackupResult{
		Path:      target,
		SizeBytes: size,
		Digest:    hex.EncodeToString(digest),
		CreatedAt: now.UTC(),
	}, nil
}

// lockForBackup folds the WAL into the main file and takes the write lock.
// It retries when a writer slipped in between the checkpoint and the lock.
func (s *Session) lockForBackup(ctx context.Context, dbPath string) (*sql.Tx, error) {
	for attempt := 0; attempt < backupCheckpointTry; attempt++ {
		if _, err := s.conn.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return nil, &IOError{Op: "checkpoint", Path: dbPath, Err: err}
		}
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return nil, &IOError{Op: "lock", Path: dbPath, Err: err}
		}
		if walEmpty(dbPath) {
			return tx, nil
		}
		_ = tx.Rollback()
	}
	return nil, &IOError{Op: "checkpoint", Path: dbPath, Err: errors.New("write-ahead log could not be emptied")}
}

func walEmpty(dbPath string) bool {
	info, err := os.Stat(dbPath + "-wal")
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	return err == nil && info.Size() == 0
}

func backupTarget(destination string, now time.Time) (string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "", invalid("destination", "backup destination is required")
	}

	name := "blog_backup_" + now.Format(backupNameLayout) + ".db"
	if strings.HasSuffix(destination, string(os.PathSeparator)) || strings.HasSuffix(destination, "/") {
		if err := os.MkdirAll(destination, 0o755); err != nil {
			return "", &IOError{Op: "backup", Path: destination, Err: err}
		}
		return filepath.Join(destination, name), nil
	}

	info, err := os.Stat(destination)
	if err == nil && info.IsDir() {
		return filepath.Join(destination, name), nil
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return "", &IOError{Op: "backup", Path: destination, Err: err}
	}
	return destination, nil
}

// copyWithDigest copies src to dst through a temporary file and returns the
// size and BLAKE2b-256 digest of what was written.
func copyWithDigest(src, dst string) (int64, []byte, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, nil, &IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return 0, nil, &IOError{Op: "create", Path: dst, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	hash, err := blake2b.New256(nil)
	if err != nil {
		cleanup()
		return 0, nil, err
	}
	size, err := io.Copy(io.MultiWriter(tmp, hash), in)
	if err != nil {
		cleanup()
		return 0, nil, &IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return 0, nil, &IOError{Op: "sync", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, nil, &IOError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return 0, nil, &IOError{Op: "rename", Path: dst, Err: err}
	}
	return size, hash.Sum(nil), nil
}

func verifyDigest(path string, want []byte) error {
	got, err := FileDigest(path)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return &IOError{Op: "verify", Path: path, Err: errors.New("digest mismatch")}
	}
	return nil
}

// FileDigest returns the BLAKE2b-256 digest of a file.
func FileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(hash, f); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return hash.Sum(nil), nil
}

// Restore replaces the database at dbPath with the backup at backupPath.
// The store for dbPath must be closed. The backup is checked for a SQLite
// header and a clean integrity check first.
func Restore(ctx context.Context, backupPath, dbPath string) error {
	if err := checkSQLiteHeader(backupPath); err != nil {
		return err
	}
	problems, err := integrityCheckFile(ctx, backupPath)
	if err != nil {
		return &IOError{Op: "restore", Path: backupPath, Err: err}
	}
	if len(problems) > 0 {
		return &IOError{Op: "restore", Path: backupPath, Err: fmt.Errorf("integrity check failed: %s", strings.Join(problems, "; "))}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return &IOError{Op: "restore", Path: dbPath, Err: err}
	}
	if _, _, err := copyWithDigest(backupPath, dbPath); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &IOError{Op: "restore", Path: dbPath + suffix, Err: err}
		}
	}
	return nil
}

func checkSQLiteHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteHeader) {
		return &IOError{Op: "restore", Path: path, Err: errors.New("not a SQLite database")}
	}
	return nil
}

func integrityCheckFile(ctx context.Context, path string) ([]string, error) {
	u := url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro&immutable=1"}
	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return integrityCheck(ctx, db)
}

// IntegrityCheck runs PRAGMA integrity_check and returns the reported
// problems. An empty result means the database is healthy.
func (s *Store) IntegrityCheck(ctx context.Context) ([]string, error) {
	return integrityCheck(ctx, s.db)
}

func integrityCheck(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	return problems, rows.Err()
}

// Optimize rebuilds the database file and refreshes planner statistics.
func (s *Store) Optimize(ctx context.Context) error {
	for _, stmt := range []string{"VACUUM", "ANALYZE"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(stmt), err)
		}
	}
	return nil
}

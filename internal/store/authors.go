package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"quill/internal/models"
)

// AuthorInput carries the fields accepted when creating an author.
type AuthorInput struct {
	Name      string
	Email     string
	Bio       string
	AvatarURL string
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const authorColumns = `a.id, a.name, COALESCE(a.email, ''), a.bio, a.avatar_url, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM blogs WHERE blogs.author_id = a.id)`

func (in AuthorInput) normalized() (AuthorInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Bio = strings.TrimSpace(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)

	if in.Name == "" {
		return in, invalid("name", "name is required")
	}
	if utf8.RuneCountInString(in.Name) > models.AuthorNameMaxLength {
		return in, invalid("name", "name must be at most 100 characters")
	}
	if in.Email != "" {
		if utf8.RuneCountInString(in.Email) > models.EmailMaxLength || !emailPattern.MatchString(in.Email) {
			return in, invalid("email", "email is invalid")
		}
	}
	return in, nil
}

// CreateAuthor inserts a new author.
func (s *Session) CreateAuthor(ctx context.Context, in AuthorInput) (*models.Author, error) {
	in, err := in.normalized()
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err = insertAuthor(ctx, tx, in, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetAuthor(ctx, id)
}

// EnsureAuthor returns the author registered under in.Email, creating it
// when unknown. A changed name replaces the stored one. Without an email a
// new author is always created.
func (s *Session) EnsureAuthor(ctx context.Context, in AuthorInput) (*models.Author, error) {
	in, err := in.normalized()
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err = ensureAuthor(ctx, tx, in, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetAuthor(ctx, id)
}

// GetAuthor returns an author with its blog count.
func (s *Session) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	row := s.conn.QueryRowContext(ctx, "SELECT "+authorColumns+" FROM authors a WHERE a.id = ?", id)
	author, err := scanAuthor(row)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, notFound("author", id)
	}
	return author, nil
}

// ListAuthors returns every author ordered by name.
func (s *Session) ListAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT "+authorColumns+" FROM authors a ORDER BY a.name COLLATE NOCASE, a.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *author)
	}
	return authors, rows.Err()
}

func insertAuthor(ctx context.Context, tx *sql.Tx, in AuthorInput, now time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO authors (name, email, bio, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Name, nullIfEmpty(in.Email), in.Bio, in.AvatarURL, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, invalid("email", "email is already registered")
		}
		return 0, err
	}
	return res.LastInsertId()
}

func ensureAuthor(ctx context.Context, tx *sql.Tx, in AuthorInput, now time.Time) (int64, error) {
	if in.Email == "" {
		return insertAuthor(ctx, tx, in, now)
	}

	var id int64
	var name string
	err := tx.QueryRowContext(ctx, "SELECT id, name FROM authors WHERE email = ?", in.Email).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return insertAuthor(ctx, tx, in, now)
	}
	if err != nil {
		return 0, err
	}

	if name != in.Name {
		if _, err := tx.ExecContext(ctx, "UPDATE authors SET name = ?, updated_at = ? WHERE id = ?", in.Name, formatTime(now), id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func authorExists(ctx context.Context, q querier, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM authors WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanAuthor(scanner interface {
	Scan(dest ...any) error
}) (*models.Author, error) {
	var author models.Author
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&author.ID,
		&author.Name,
		&author.Email,
		&author.Bio,
		&author.AvatarURL,
		&createdAt,
		&updatedAt,
		&author.BlogCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var err error
	if author.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if author.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &author, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

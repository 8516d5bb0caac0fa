package store

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"quill/internal/models"
	"quill/internal/render"
)

// BlogInput carries the fields accepted when creating a blog.
type BlogInput struct {
	Title       string
	Content     string
	AuthorID    int64
	PublishedOn time.Time
	Featured    bool
	// Published defaults to true when nil.
	Published *bool
}

// BlogFilter selects and orders blogs for listing.
type BlogFilter struct {
	TitleContains string
	Search        string
	AuthorID      int64
	Featured      *bool
	PublishedOnly bool
	SortBy        models.SortKey
	SortOrder     models.SortOrder
	Limit         int
	Offset        int
}

const blogColumns = `b.id, b.title, b.content, b.slug, b.excerpt, b.published_on, b.featured, b.published,
	b.view_count, b.like_count, b.author_id, a.name, b.created_at, b.updated_at`

const blogFrom = " FROM blogs b JOIN authors a ON a.id = b.author_id"

func (in BlogInput) normalized() (BlogInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)

	if in.Title == "" {
		return in, invalid("title", "title is required")
	}
	if utf8.RuneCountInString(in.Title) > models.TitleMaxLength {
		return in, invalid("title", "title must be at most 200 characters")
	}
	if in.Content == "" {
		return in, invalid("content", "content is required")
	}
	return in, nil
}

// CreateBlog inserts a blog for an existing author. Counters start at zero.
func (s *Session) CreateBlog(ctx context.Context, in BlogInput) (*models.Blog, error) {
	in, err := in.normalized()
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err = insertBlog(ctx, tx, in, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.PeekBlog(ctx, id)
}

// PublishBlog resolves the author by email (see EnsureAuthor) and creates
// the blog in the same transaction, so a rejected blog leaves no new author.
func (s *Session) PublishBlog(ctx context.Context, author AuthorInput, in BlogInput) (*models.Blog, error) {
	author, err := author.normalized()
	if err != nil {
		return nil, err
	}
	in, err = in.normalized()
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		authorID, err := ensureAuthor(ctx, tx, author, now)
		if err != nil {
			return err
		}
		in.AuthorID = authorID
		id, err = insertBlog(ctx, tx, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.PeekBlog(ctx, id)
}

// GetBlog returns a blog and records one view of it. The returned row
// includes the new view.
func (s *Session) GetBlog(ctx context.Context, id int64) (*models.Blog, error) {
	return s.bumpCounter(ctx, id, "UPDATE blogs SET view_count = view_count + 1 WHERE id = ?")
}

// PeekBlog returns a blog without counting a view.
func (s *Session) PeekBlog(ctx context.Context, id int64) (*models.Blog, error) {
	return getBlog(ctx, s.conn, id)
}

// IncrementLike adds one like to a blog.
func (s *Session) IncrementLike(ctx context.Context, id int64) (*models.Blog, error) {
	return s.bumpCounter(ctx, id, "UPDATE blogs SET like_count = like_count + 1 WHERE id = ?")
}

// DecrementLike removes one like from a blog. The count never drops below zero.
func (s *Session) DecrementLike(ctx context.Context, id int64) (*models.Blog, error) {
	var blog *models.Blog
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE blogs SET like_count = like_count - 1 WHERE id = ? AND like_count > 0", id); err != nil {
			return err
		}
		var err error
		blog, err = getBlog(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *Session) bumpCounter(ctx context.Context, id int64, stmt string) (*models.Blog, error) {
	var blog *models.Blog
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, stmt, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return notFound("blog", id)
		}
		blog, err = getBlog(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blog, nil
}

// Blogs returns a lazy sequence over the blogs matching filter. Every
// range over the sequence runs the query again.
func (s *Session) Blogs(ctx context.Context, filter BlogFilter) iter.Seq2[models.Blog, error] {
	return func(yield func(models.Blog, error) bool) {
		query, args, err := buildListQuery(filter)
		if err != nil {
			yield(models.Blog{}, err)
			return
		}

		rows, err := s.conn.QueryContext(ctx, query, args...)
		if err != nil {
			yield(models.Blog{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			blog, err := scanBlog(rows)
			if err != nil {
				yield(models.Blog{}, err)
				return
			}
			if !yield(*blog, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Blog{}, err)
		}
	}
}

// ListBlogs collects the blogs matching filter.
func (s *Session) ListBlogs(ctx context.Context, filter BlogFilter) ([]models.Blog, error) {
	var blogs []models.Blog
	for blog, err := range s.Blogs(ctx, filter) {
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, nil
}

// RelatedBlogs returns other published blogs by the same author, newest first.
func (s *Session) RelatedBlogs(ctx context.Context, blog *models.Blog, limit int) ([]models.Blog, error) {
	if blog == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	rows, err := s.conn.QueryContext(ctx, "SELECT "+blogColumns+blogFrom+`
		WHERE b.author_id = ? AND b.id != ? AND b.published = 1
		ORDER BY b.published_on DESC, b.created_at DESC, b.id DESC
		LIMIT ?`, blog.AuthorID, blog.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var related []models.Blog
	for rows.Next() {
		item, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		related = append(related, *item)
	}
	return related, rows.Err()
}

func insertBlog(ctx context.Context, tx *sql.Tx, in BlogInput, now time.Time) (int64, error) {
	ok, err := authorExists(ctx, tx, in.AuthorID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, notFound("author", in.AuthorID)
	}

	publishedOn := in.PublishedOn
	if publishedOn.IsZero() {
		publishedOn = now
	}
	published := true
	if in.Published != nil {
		published = *in.Published
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO blogs (
			title, content, slug, excerpt, published_on, featured, published, author_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		in.Title,
		in.Content,
		models.Slugify(in.Title),
		models.Excerpt(render.PlainText(in.Content)),
		publishedOn.Format(models.DateLayout),
		boolToInt(in.Featured),
		boolToInt(published),
		in.AuthorID,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func getBlog(ctx context.Context, q querier, id int64) (*models.Blog, error) {
	row := q.QueryRowContext(ctx, "SELECT "+blogColumns+blogFrom+" WHERE b.id = ?", id)
	blog, err := scanBlog(row)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, notFound("blog", id)
	}
	return blog, nil
}

func scanBlog(scanner interface {
	Scan(dest ...any) error
}) (*models.Blog, error) {
	var blog models.Blog
	var publishedOn, createdAt, updatedAt string

	if err := scanner.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Content,
		&blog.Slug,
		&blog.Excerpt,
		&publishedOn,
		&blog.Featured,
		&blog.Published,
		&blog.ViewCount,
		&blog.LikeCount,
		&blog.AuthorID,
		&blog.AuthorName,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var err error
	if blog.PublishedOn, err = time.Parse(models.DateLayout, publishedOn); err != nil {
		return nil, err
	}
	if blog.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if blog.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &blog, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

package store

import (
	"context"
	"iter"

	"quill/internal/models"
)

// BlogStore is the data-access surface available on a session.
type BlogStore interface {
	CreateAuthor(ctx context.Context, in AuthorInput) (*models.Author, error)
	EnsureAuthor(ctx context.Context, in AuthorInput) (*models.Author, error)
	GetAuthor(ctx context.Context, id int64) (*models.Author, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)

	CreateBlog(ctx context.Context, in BlogInput) (*models.Blog, error)
	PublishBlog(ctx context.Context, author AuthorInput, in BlogInput) (*models.Blog, error)
	GetBlog(ctx context.Context, id int64) (*models.Blog, error)
	PeekBlog(ctx context.Context, id int64) (*models.Blog, error)
	IncrementLike(ctx context.Context, id int64) (*models.Blog, error)
	DecrementLike(ctx context.Context, id int64) (*models.Blog, error)
	Blogs(ctx context.Context, filter BlogFilter) iter.Seq2[models.Blog, error]
	ListBlogs(ctx context.Context, filter BlogFilter) ([]models.Blog, error)
	RelatedBlogs(ctx context.Context, blog *models.Blog, limit int) ([]models.Blog, error)

	Stats(ctx context.Context) (*Stats, error)
	SeedDemoData(ctx context.Context) (*SeedResult, error)
}

// SessionProvider hands out request-scoped sessions.
type SessionProvider interface {
	WithSession(ctx context.Context, fn func(BlogStore) error) error
}

var (
	_ BlogStore       = (*Session)(nil)
	_ SessionProvider = (*Store)(nil)
)

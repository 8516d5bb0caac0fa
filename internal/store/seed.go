package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"quill/internal/models"
)

//go:embed seed_data.yaml
var seedData []byte

type seedFixture struct {
	Authors []struct {
		Name      string `yaml:"name"`
		Email     string `yaml:"email"`
		Bio       string `yaml:"bio"`
		AvatarURL string `yaml:"avatar_url"`
	} `yaml:"authors"`
	Blogs []struct {
		Title       string `yaml:"title"`
		Author      string `yaml:"author"`
		PublishedOn string `yaml:"published_on"`
		Featured    bool   `yaml:"featured"`
		Content     string `yaml:"content"`
	} `yaml:"blogs"`
}

// SeedResult reports what SeedDemoData inserted.
type SeedResult struct {
	Skipped bool `json:"skipped"`
	Authors int  `json:"authors"`
	Blogs   int  `json:"blogs"`
}

// SeedDemoData inserts the demo authors and blogs in one transaction. It
// does nothing when any author already exists.
func (s *Session) SeedDemoData(ctx context.Context) (*SeedResult, error) {
	var fixture seedFixture
	if err := yaml.Unmarshal(seedData, &fixture); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	result := &SeedResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			result.Skipped = true
			return nil
		}

		now := time.Now()
		byEmail := make(map[string]int64, len(fixture.Authors))
		for _, a := range fixture.Authors {
			in, err := AuthorInput{Name: a.Name, Email: a.Email, Bio: a.Bio, AvatarURL: a.AvatarURL}.normalized()
			if err != nil {
				return fmt.Errorf("seed author %q: %w", a.Name, err)
			}
			id, err := insertAuthor(ctx, tx, in, now)
			if err != nil {
				return fmt.Errorf("seed author %q: %w", a.Name, err)
			}
			byEmail[in.Email] = id
			result.Authors++
		}

		for _, b := range fixture.Blogs {
			authorID, ok := byEmail[b.Author]
			if !ok {
				return fmt.Errorf("seed blog %q: unknown author %s", b.Title, b.Author)
			}
			publishedOn, err := time.Parse(models.DateLayout, b.PublishedOn)
			if err != nil {
				return fmt.Errorf("seed blog %q: %w", b.Title, err)
			}
			in, err := BlogInput{
				Title:       b.Title,
				Content:     b.Content,
				AuthorID:    authorID,
				PublishedOn: publishedOn,
				Featured:    b.Featured,
			}.normalized()
			if err != nil {
				return fmt.Errorf("seed blog %q: %w", b.Title, err)
			}
			if _, err := insertBlog(ctx, tx, in, now); err != nil {
				return fmt.Errorf("seed blog %q: %w", b.Title, err)
			}
			result.Blogs++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

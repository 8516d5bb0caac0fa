package models

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the storage layout of Blog.PublishedOn.
const DateLayout = "2006-01-02"

// Blog is a single published post with its engagement counters.
type Blog struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	PublishedOn time.Time `json:"published_on"`
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WordCount returns the number of whitespace separated words in the content.
func (b Blog) WordCount() int {
	return len(strings.Fields(b.Content))
}

// ReadingMinutes estimates reading time at 200 words per minute, at least one.
func (b Blog) ReadingMinutes() int {
	minutes := int(math.Round(float64(b.WordCount()) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// IsLongForm reports whether the post has more than 1000 words.
func (b Blog) IsLongForm() bool {
	return b.WordCount() > longFormWords
}

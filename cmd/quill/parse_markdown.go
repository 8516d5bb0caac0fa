package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quill/internal/models"
	"quill/internal/store"
)

// postFrontMatter is the YAML header accepted at the top of an imported post.
type postFrontMatter struct {
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Email     string `yaml:"email"`
	Date      string `yaml:"date"`
	Featured  bool   `yaml:"featured"`
	Published *bool  `yaml:"published"`
}

// importedPost is a markdown file ready to be published.
type importedPost struct {
	Author store.AuthorInput
	Blog   store.BlogInput
}

// parseMarkdown splits optional YAML front matter from the post body.
func parseMarkdown(input string) (postFrontMatter, string, error) {
	var front postFrontMatter
	input = strings.ReplaceAll(input, "\r\n", "\n")
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return front, "", errors.New("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &front); err != nil {
			return front, "", fmt.Errorf("front matter: %w", err)
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	// Without a title, a leading "# heading" names the post.
	if strings.TrimSpace(front.Title) == "" {
		trimmed := strings.TrimLeft(content, "\n")
		first, rest, _ := strings.Cut(trimmed, "\n")
		if heading, ok := strings.CutPrefix(first, "# "); ok {
			front.Title = strings.TrimSpace(heading)
			content = rest
		}
	}

	return front, strings.TrimSpace(content), nil
}

// toImportedPost applies fallbacks for a missing author and date.
func (f postFrontMatter) toImportedPost(body, defaultAuthor, defaultEmail string) (importedPost, error) {
	author := store.AuthorInput{Name: f.Author, Email: f.Email}
	if strings.TrimSpace(author.Name) == "" {
		author.Name = defaultAuthor
		if strings.TrimSpace(author.Email) == "" {
			author.Email = defaultEmail
		}
	}
	if strings.TrimSpace(author.Name) == "" {
		return importedPost{}, errors.New("author is required (front matter or --author)")
	}

	publishedOn := time.Now()
	if raw := strings.TrimSpace(f.Date); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return importedPost{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
		}
		publishedOn = parsed
	}

	return importedPost{
		Author: author,
		Blog: store.BlogInput{
			Title:       f.Title,
			Content:     body,
			PublishedOn: publishedOn,
			Featured:    f.Featured,
			Published:   f.Published,
		},
	}, nil
}

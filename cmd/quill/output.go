package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"quill/internal/api"
	"quill/internal/format"
	"quill/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{Indent: "  "}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeBlogList(blogs []api.BlogResponse) error {
	for _, blog := range blogs {
		if err := writePlain("%s\n", formatBlogLine(blog)); err != nil {
			return err
		}
	}
	return nil
}

func writeBlogDetail(blog api.BlogResponse) error {
	lines := []string{
		fmt.Sprintf("id: %d", blog.ID),
		fmt.Sprintf("title: %s", blog.Title),
		fmt.Sprintf("slug: %s", blog.Slug),
		fmt.Sprintf("author: %s (id %d)", blog.AuthorName, blog.AuthorID),
		fmt.Sprintf("published_on: %s", blog.PublishedOn),
		fmt.Sprintf("views: %d", blog.ViewCount),
		fmt.Sprintf("likes: %d", blog.LikeCount),
		fmt.Sprintf("reading_minutes: %d", blog.ReadingMinutes),
		fmt.Sprintf("created_at: %s", formatTime(blog.CreatedAt)),
	}
	if blog.Featured {
		lines = append(lines, "featured: true")
	}
	if !blog.Published {
		lines = append(lines, "published: false")
	}
	if blog.Excerpt != "" {
		lines = append(lines, fmt.Sprintf("excerpt: %s", blog.Excerpt))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatBlogLine(blog api.BlogResponse) string {
	marker := " "
	if blog.Featured {
		marker = "*"
	}
	return fmt.Sprintf("%s %4d %s  %-40s  %s  (%d views, %d likes)",
		marker, blog.ID, blog.PublishedOn, truncate(blog.Title, 40), blog.AuthorName, blog.ViewCount, blog.LikeCount)
}

func blogResponses(blogs []models.Blog) []api.BlogResponse {
	return api.NewBlogListResponse(blogs).Blogs
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

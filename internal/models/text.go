package models

import (
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

// Slugify builds a URL-friendly slug from a title. Non-ASCII letters are
// transliterated.
func Slugify(title string) string {
	return strings.Trim(truncateRunes(slug.Make(title), SlugMaxLength), "-")
}

// Excerpt returns a short summary of content. Text longer than the
// excerpt limit is cut at a sentence end when one falls late enough,
// otherwise at the last space with a trailing ellipsis.
func Excerpt(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(clean) <= ExcerptMaxLength {
		return clean
	}

	cut := truncateRunes(clean, ExcerptMaxLength)
	sentenceEnd := max(strings.LastIndex(cut, "."), strings.LastIndex(cut, "!"), strings.LastIndex(cut, "?"))
	if sentenceEnd > 100 {
		return cut[:sentenceEnd+1]
	}
	if space := strings.LastIndex(cut, " "); space > 0 {
		return cut[:space] + "..."
	}
	return cut + "..."
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}

package models

import (
	"strings"
	"time"
	"unicode"
)

// Author is the writer of one or more blogs.
type Author struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	BlogCount int       `json:"blog_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvatarInitial returns the upper-cased first letter of the name, or "A".
func (a Author) AvatarInitial() string {
	for _, r := range strings.TrimSpace(a.Name) {
		return string(unicode.ToUpper(r))
	}
	return "A"
}

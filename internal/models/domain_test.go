package models

import (
	"strings"
	"testing"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		order     string
		wantKey   SortKey
		wantOrder SortOrder
		wantErr   bool
	}{
		{name: "default newest", wantKey: SortDate, wantOrder: OrderDesc},
		{name: "views", key: " VIEWS ", wantKey: SortViews, wantOrder: OrderDesc},
		{name: "title ascending by default", key: "title", wantKey: SortTitle, wantOrder: OrderAsc},
		{name: "explicit order wins", key: "likes", order: "asc", wantKey: SortLikes, wantOrder: OrderAsc},
		{name: "legacy oldest", key: "oldest", wantKey: SortDate, wantOrder: OrderAsc},
		{name: "legacy newest", key: "newest", wantKey: SortDate, wantOrder: OrderDesc},
		{name: "invalid key", key: "random", wantErr: true},
		{name: "invalid order", key: "date", order: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, order, err := ParseSort(tt.key, tt.order)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse sort: %v", err)
			}
			if key != tt.wantKey || order != tt.wantOrder {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantKey, tt.wantOrder, key, order)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("Crème Brûlée Basics"); got != "creme-brulee-basics" {
		t.Fatalf("unexpected transliterated slug %q", got)
	}
	if got := Slugify("  Hello, World! Go  "); got != "hello-world-go" {
		t.Fatalf("unexpected slug %q", got)
	}
	long := Slugify(strings.Repeat("abcdef ", 20))
	if len(long) > SlugMaxLength {
		t.Fatalf("expected slug capped at %d, got %d", SlugMaxLength, len(long))
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("  short   text\n here "); got != "short text here" {
		t.Fatalf("unexpected short excerpt %q", got)
	}

	got := Excerpt(strings.Repeat("word ", 40))
	want := strings.TrimSpace(strings.Repeat("word ", 30)) + "..."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	sentence := strings.Repeat("a", 120) + ". " + strings.Repeat("b ", 40)
	if got := Excerpt(sentence); got != strings.Repeat("a", 120)+"." {
		t.Fatalf("expected cut at sentence end, got %q", got)
	}
}

func TestBlogReadingMinutes(t *testing.T) {
	if got := (Blog{}).ReadingMinutes(); got != 1 {
		t.Fatalf("expected minimum of 1 minute, got %d", got)
	}
	blog := Blog{Content: strings.Repeat("word ", 400)}
	if got := blog.ReadingMinutes(); got != 2 {
		t.Fatalf("expected 2 minutes, got %d", got)
	}
	if blog.IsLongForm() {
		t.Fatal("400 words should not be long form")
	}
}

func TestAuthorAvatarInitial(t *testing.T) {
	if got := (Author{Name: "ada"}).AvatarInitial(); got != "A" {
		t.Fatalf("expected A, got %q", got)
	}
	if got := (Author{}).AvatarInitial(); got != "A" {
		t.Fatalf("expected fallback A, got %q", got)
	}
	if got := (Author{Name: " émile"}).AvatarInitial(); got != "É" {
		t.Fatalf("expected É, got %q", got)
	}
}

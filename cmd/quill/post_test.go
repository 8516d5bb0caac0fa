package main

import "testing"

func TestPostListFlagsQuery(t *testing.T) {
	flags := postListFlags{
		search:   "  go ",
		author:   3,
		featured: true,
		sort:     "views",
		limit:    25,
		offset:   50,
	}
	got := flags.query().Encode()
	want := "author=3&featured=true&limit=25&offset=50&search=go&sort=views"
	if got != want {
		t.Fatalf("query = %q, want %q", got, want)
	}

	if empty := (postListFlags{}).query().Encode(); empty != "" {
		t.Fatalf("expected empty query, got %q", empty)
	}
}

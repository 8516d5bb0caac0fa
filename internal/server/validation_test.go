package server

import (
	"strings"
	"testing"
)

func TestAddBlogFormValidate(t *testing.T) {
	valid := addBlogForm{
		AuthorName:  "Ada Lovelace",
		AuthorEmail: "ada@example.com",
		Title:       "Notes on the Engine",
		Content:     "The engine weaves algebraic patterns.",
		Date:        "2024-02-01",
	}

	tests := []struct {
		name      string
		mutate    func(f *addBlogForm)
		wantField string
		wantMsg   string
	}{
		{name: "valid", mutate: func(f *addBlogForm) {}},
		{name: "missing author", mutate: func(f *addBlogForm) { f.AuthorName = "" }, wantField: "author_name", wantMsg: "Author name is required."},
		{name: "short author", mutate: func(f *addBlogForm) { f.AuthorName = "A" }, wantField: "author_name", wantMsg: "between 2 and 100"},
		{name: "long author", mutate: func(f *addBlogForm) { f.AuthorName = strings.Repeat("a", 101) }, wantField: "author_name", wantMsg: "between 2 and 100"},
		{name: "missing email", mutate: func(f *addBlogForm) { f.AuthorEmail = "" }, wantField: "author_email", wantMsg: "Author email is required."},
		{name: "bad email", mutate: func(f *addBlogForm) { f.AuthorEmail = "ada" }, wantField: "author_email", wantMsg: "valid email"},
		{name: "short title", mutate: func(f *addBlogForm) { f.Title = "Hey" }, wantField: "blog_title", wantMsg: "between 5 and 200"},
		{name: "long title", mutate: func(f *addBlogForm) { f.Title = strings.Repeat("t", 201) }, wantField: "blog_title", wantMsg: "between 5 and 200"},
		{name: "short content", mutate: func(f *addBlogForm) { f.Content = "too short" }, wantField: "blog_content", wantMsg: "at least 10"},
		{name: "missing date", mutate: func(f *addBlogForm) { f.Date = "" }, wantField: "blog_date", wantMsg: "Publication date is required."},
		{name: "bad date", mutate: func(f *addBlogForm) { f.Date = "2024-13-40" }, wantField: "blog_date", wantMsg: "valid date"},
		{name: "unicode title counts runes", mutate: func(f *addBlogForm) { f.Title = "héllo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			errs := fieldErrors(form.Validate())
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %+v", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %+v", errs)
			}
			if errs[0].Field != tt.wantField || !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Fatalf("unexpected error %+v", errs[0])
			}
		})
	}
}

func TestFieldErrorsFollowFormOrder(t *testing.T) {
	errs := fieldErrors(addBlogForm{}.Validate())
	want := []string{"author_name", "author_email", "blog_title", "blog_content", "blog_date"}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %+v", len(want), errs)
	}
	for i, field := range want {
		if errs[i].Field != field {
			t.Fatalf("error %d: expected %s, got %s", i, field, errs[i].Field)
		}
	}
}

func TestParseFormDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-01-15", want: "2024-01-15"},
		{in: " 2024-01-15 ", want: "2024-01-15"},
		{in: "15-01-2024", want: "2024-01-15"},
		{in: "01/15/2024", want: "2024-01-15"},
		{in: "January 15, 2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseFormDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseFormDate(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseFormDate(%q): %v", tt.in, err)
		}
		if got.Format("2006-01-02") != tt.want {
			t.Fatalf("parseFormDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

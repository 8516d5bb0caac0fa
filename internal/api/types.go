package api

import "quill/internal/models"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
	Field     string `json:"field,omitempty"`
}

// BlogResponse is a blog with its derived reading metrics.
type BlogResponse struct {
	models.Blog
	PublishedOn    string `json:"published_on"`
	WordCount      int    `json:"word_count"`
	ReadingMinutes int    `json:"reading_minutes"`
	LongForm       bool   `json:"long_form"`
}

// BlogListResponse wraps a filtered blog listing.
type BlogListResponse struct {
	Blogs []BlogResponse `json:"blogs"`
	Count int            `json:"count"`
}

// LikeResponse reports the counter after a like or unlike.
type LikeResponse struct {
	ID        int64 `json:"id"`
	LikeCount int64 `json:"like_count"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewBlogResponse maps a blog to its JSON form.
func NewBlogResponse(blog models.Blog) BlogResponse {
	return BlogResponse{
		Blog:           blog,
		PublishedOn:    blog.PublishedOn.Format(models.DateLayout),
		WordCount:      blog.WordCount(),
		ReadingMinutes: blog.ReadingMinutes(),
		LongForm:       blog.IsLongForm(),
	}
}

// NewBlogListResponse maps a listing to its JSON form.
func NewBlogListResponse(blogs []models.Blog) BlogListResponse {
	out := BlogListResponse{Blogs: make([]BlogResponse, 0, len(blogs)), Count: len(blogs)}
	for _, blog := range blogs {
		out.Blogs = append(out.Blogs, NewBlogResponse(blog))
	}
	return out
}

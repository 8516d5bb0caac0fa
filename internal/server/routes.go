package server

import (
	"errors"
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Pages.
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /search", s.handleSearch)

	// Blogs.
	mux.HandleFunc("GET /blogs", s.handleListBlogs)
	mux.HandleFunc("GET /blogs/add", s.handleAddBlogForm)
	mux.HandleFunc("POST /blogs/add", s.handleAddBlog)
	mux.HandleFunc("GET /blogs/{id}", s.handleViewBlog)
	mux.HandleFunc("POST /blogs/{id}/like", s.handleLikeBlog)
	mux.HandleFunc("POST /blogs/{id}/unlike", s.handleUnlikeBlog)

	// Authors.
	mux.HandleFunc("GET /authors/{id}", s.handleViewAuthor)

	// JSON API.
	mux.HandleFunc("GET /api/blogs", s.handleAPIListBlogs)
	mux.HandleFunc("GET /api/blogs/{id}", s.handleAPIGetBlog)

	mux.Handle("GET /static/", s.staticHandler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, notFoundCode(errors.New("The page you are looking for does not exist."), ErrCodePageNotFound))
	})

	return mux
}

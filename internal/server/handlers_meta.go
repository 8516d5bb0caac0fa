package server

import (
	"net/http"

	"quill/internal/api"
	"quill/internal/models"
	"quill/internal/store"
)

type aboutView struct {
	Stats *store.Stats
}

type authorView struct {
	Author *models.Author
	Blogs  []models.Blog
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	var view aboutView
	err := s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		view.Stats, err = bs.Stats(r.Context())
		return err
	})
	if err != nil {
		s.renderError(w, r, classifyStoreError(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "about", "About", view)
}

func (s *Server) handleViewAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var view authorView
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		view.Author, err = bs.GetAuthor(r.Context(), id)
		if err != nil {
			return err
		}
		view.Blogs, err = bs.ListBlogs(r.Context(), store.BlogFilter{AuthorID: id, PublishedOnly: true, SortBy: models.SortDate})
		return err
	})
	if err != nil {
		s.renderError(w, r, classifyStoreError(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "author", view.Author.Name, view)
}

package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"quill/internal/api"
	"quill/internal/models"
	"quill/internal/store"
)

const (
	homeSectionSize = 3
	relatedLimit    = 3
)

type indexView struct {
	Recent   []models.Blog
	Featured []models.Blog
	Popular  []models.Blog
}

type blogListView struct {
	Blogs   []models.Blog
	Authors []models.Author
	Params  listParams
	Sorts   []sortOption
}

type sortOption struct {
	Key   models.SortKey
	Label string
}

var sortOptions = []sortOption{
	{models.SortDate, "Date"},
	{models.SortViews, "Views"},
	{models.SortLikes, "Likes"},
	{models.SortTitle, "Title"},
	{models.SortAuthor, "Author"},
}

type blogView struct {
	Blog    *models.Blog
	Related []models.Blog
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var view indexView
	err := s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		view.Recent, err = bs.ListBlogs(r.Context(), store.BlogFilter{PublishedOnly: true, SortBy: models.SortDate, Limit: homeSectionSize})
		if err != nil {
			return err
		}
		featured := true
		view.Featured, err = bs.ListBlogs(r.Context(), store.BlogFilter{PublishedOnly: true, Featured: &featured, SortBy: models.SortDate, Limit: homeSectionSize})
		if err != nil {
			return err
		}
		view.Popular, err = bs.ListBlogs(r.Context(), store.BlogFilter{PublishedOnly: true, SortBy: models.SortViews, Limit: homeSectionSize})
		return err
	})
	if err != nil {
		s.renderError(w, r, classifyStoreError(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "index", "Home", view)
}

func (s *Server) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	filter, params, err := parseBlogFilter(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view := blogListView{Params: params, Sorts: sortOptions}
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		view.Blogs, err = bs.ListBlogs(r.Context(), filter)
		if err != nil {
			return err
		}
		view.Authors, err = bs.ListAuthors(r.Context())
		return err
	})
	if err != nil {
		s.renderError(w, r, classifyStoreError(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "blogs", "All Blogs", view)
}

func (s *Server) handleViewBlog(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var view blogView
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		view.Blog, err = bs.GetBlog(r.Context(), id)
		if err != nil {
			return err
		}
		view.Related, err = bs.RelatedBlogs(r.Context(), view.Blog, relatedLimit)
		return err
	})
	if err != nil {
		s.renderError(w, r, classifyStoreError(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "view_blog", view.Blog.Title, view)
}

func (s *Server) handleLikeBlog(w http.ResponseWriter, r *http.Request) {
	s.handleLikeCounter(w, r, "liked", func(bs store.BlogStore, id int64) (*models.Blog, error) {
		return bs.IncrementLike(r.Context(), id)
	})
}

func (s *Server) handleUnlikeBlog(w http.ResponseWriter, r *http.Request) {
	s.handleLikeCounter(w, r, "unliked", func(bs store.BlogStore, id int64) (*models.Blog, error) {
		return bs.DecrementLike(r.Context(), id)
	})
}

func (s *Server) handleLikeCounter(w http.ResponseWriter, r *http.Request, flash string, bump func(store.BlogStore, int64) (*models.Blog, error)) {
	id, err := requirePathID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var blog *models.Blog
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		blog, err = bump(bs, id)
		return err
	})
	if err != nil {
		s.renderError(w, r, classifyStoreError(err))
		return
	}

	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, api.LikeResponse{ID: blog.ID, LikeCount: blog.LikeCount})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/blogs/%d?flash=%s", blog.ID, flash), http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Redirect(w, r, "/blogs", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/blogs?search="+url.QueryEscape(q), http.StatusSeeOther)
}

func (s *Server) handleAPIListBlogs(w http.ResponseWriter, r *http.Request) {
	filter, _, err := parseBlogFilter(r)
	if err != nil {
		s.writeErrorReq(w, r, err)
		return
	}

	var blogs []models.Blog
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		blogs, err = bs.ListBlogs(r.Context(), filter)
		return err
	})
	if err != nil {
		s.writeErrorReq(w, r, classifyStoreError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewBlogListResponse(blogs))
}

func (s *Server) handleAPIGetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		s.writeErrorReq(w, r, err)
		return
	}

	var blog *models.Blog
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		blog, err = bs.GetBlog(r.Context(), id)
		return err
	})
	if err != nil {
		s.writeErrorReq(w, r, classifyStoreError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewBlogResponse(*blog))
}

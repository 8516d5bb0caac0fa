package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"quill/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const layoutTemplate = "templates/layout.html"

// flashMessages are the notices a redirect can ask the next page to show.
var flashMessages = map[string]string{
	"published": "Your blog has been published successfully!",
	"liked":     "Thanks for the like!",
	"unliked":   "Like removed.",
}

var templateFuncs = template.FuncMap{
	"markdown": render.MustMarkdown,
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 02, 2006")
	},
	"isoDate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
}

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		if page == layoutTemplate {
			continue
		}
		tmpl, err := template.New(path.Base(layoutTemplate)).Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, page)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(path.Base(page), ".html")] = tmpl
	}
	return out, nil
}

// pageData is the common envelope passed to every page template.
type pageData struct {
	SiteName string
	Title    string
	Year     int
	Flash    string
	Data     any
}

// renderPage executes a page into a buffer first so that template errors
// still produce a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	tmpl, ok := s.templates[page]
	if !ok && page == "error" {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		s.renderError(w, r, internalError(errUnknownTemplate(page)))
		return
	}

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, path.Base(layoutTemplate), pageData{
		SiteName: s.siteName,
		Title:    title,
		Year:     time.Now().Year(),
		Flash:    flashMessages[r.URL.Query().Get("flash")],
		Data:     data,
	})
	if err != nil {
		if page == "error" {
			s.log().Error("render error page", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.renderError(w, r, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeRenderFailed, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	Status  int
	Heading string
	Message string
}

// renderError writes an HTML error page, or JSON when the client asked for it.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		s.writeErrorReq(w, r, err)
		return
	}

	status := httpStatusFromError(err)
	s.logError(r, status, err)
	heading := http.StatusText(status)
	if status == http.StatusNotFound {
		heading = "Page not found"
	}
	s.renderPage(w, r, status, "error", heading, errorPage{
		Status:  status,
		Heading: heading,
		Message: s.publicMessage(status, err),
	})
}

func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	fileServer := http.StripPrefix("/static/", http.FileServerFS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

type errUnknownTemplate string

func (e errUnknownTemplate) Error() string {
	return "unknown template " + string(e)
}

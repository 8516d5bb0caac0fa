package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"quill/internal/api"
	"quill/internal/models"
	"quill/internal/store"
)

const maxFormBytes = 1 << 20

type addBlogView struct {
	Form   addBlogForm
	Errors []fieldError
}

func (s *Server) handleAddBlogForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "add_blog", "Add New Blog", addBlogView{
		Form: addBlogForm{Date: time.Now().Format(models.DateLayout)},
	})
}

func (s *Server) handleAddBlog(w http.ResponseWriter, r *http.Request) {
	form, err := s.readAddBlogRequest(w, r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := form.Validate(); err != nil {
		s.rejectAddBlog(w, r, form, fieldErrors(err))
		return
	}

	publishedOn, _ := parseFormDate(form.Date)
	var blog *models.Blog
	err = s.sessions.WithSession(r.Context(), func(bs store.BlogStore) error {
		var err error
		blog, err = bs.PublishBlog(r.Context(),
			store.AuthorInput{Name: form.AuthorName, Email: form.AuthorEmail},
			store.BlogInput{Title: form.Title, Content: form.Content, PublishedOn: publishedOn, Featured: form.Featured},
		)
		return err
	})
	if err != nil {
		if store.IsValidation(err) {
			s.rejectAddBlog(w, r, form, []fieldError{{Field: formFieldFor(err), Message: validationMessage(err)}})
			return
		}
		s.renderError(w, r, classifyStoreError(err))
		return
	}

	s.log().Info("blog published", "id", blog.ID, "author_id", blog.AuthorID, "request_id", requestIDFrom(r.Context()))
	if wantsJSON(r) {
		w.Header().Set("Location", fmt.Sprintf("/blogs/%d", blog.ID))
		s.writeJSON(w, http.StatusCreated, api.NewBlogResponse(*blog))
		return
	}
	http.Redirect(w, r, "/blogs?flash=published", http.StatusFound)
}

// readAddBlogRequest reads the submission from a JSON body or a posted form.
func (s *Server) readAddBlogRequest(w http.ResponseWriter, r *http.Request) (addBlogForm, error) {
	if hasJSONBody(r) {
		var form addBlogForm
		if err := decodeJSON(w, r, &form); err != nil {
			return addBlogForm{}, classifyDecodeJSONError(err)
		}
		return form.trimmed(), nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return addBlogForm{}, badRequestCode(fmt.Errorf("invalid form: %w", err), ErrCodeInvalidForm)
	}
	return readAddBlogForm(r), nil
}

// rejectAddBlog re-renders the form with the submitted values and a 400.
func (s *Server) rejectAddBlog(w http.ResponseWriter, r *http.Request, form addBlogForm, errs []fieldError) {
	if wantsJSON(r) {
		first := errs[0]
		s.writeErrorReq(w, r, apiError{
			status:  http.StatusBadRequest,
			code:    "invalid_argument",
			errCode: ErrCodeInvalidForm,
			field:   first.Field,
			err:     errors.New(first.Message),
		})
		return
	}
	s.logError(r, http.StatusBadRequest, fmt.Errorf("add blog rejected: %d field errors", len(errs)))
	s.renderPage(w, r, http.StatusBadRequest, "add_blog", "Add New Blog", addBlogView{Form: form, Errors: errs})
}

// formFieldFor maps a store validation field onto the form input name.
func formFieldFor(err error) string {
	var field string
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		field = verr.Field
	}
	switch field {
	case "name":
		return "author_name"
	case "email":
		return "author_email"
	case "title":
		return "blog_title"
	case "content":
		return "blog_content"
	default:
		return field
	}
}

func validationMessage(err error) string {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

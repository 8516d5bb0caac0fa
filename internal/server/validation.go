package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"quill/internal/models"
)

// formDateLayouts are the accepted spellings of the publication date.
var formDateLayouts = []string{models.DateLayout, "02-01-2006", "01/02/2006"}

// addBlogForm is the submitted add-blog form.
type addBlogForm struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Title       string `json:"blog_title"`
	Content     string `json:"blog_content"`
	Date        string `json:"blog_date"`
	Featured    bool   `json:"featured"`
}

// fieldError is one validation message tied to a form field.
type fieldError struct {
	Field   string
	Message string
}

func readAddBlogForm(r *http.Request) addBlogForm {
	return addBlogForm{
		AuthorName:  r.PostFormValue("author_name"),
		AuthorEmail: r.PostFormValue("author_email"),
		Title:       r.PostFormValue("blog_title"),
		Content:     r.PostFormValue("blog_content"),
		Date:        r.PostFormValue("blog_date"),
		Featured:    r.PostFormValue("featured") != "",
	}.trimmed()
}

func (f addBlogForm) trimmed() addBlogForm {
	f.AuthorName = strings.TrimSpace(f.AuthorName)
	f.AuthorEmail = strings.TrimSpace(f.AuthorEmail)
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	f.Date = strings.TrimSpace(f.Date)
	return f
}

func (f addBlogForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.AuthorName,
			validation.Required.Error("Author name is required."),
			validation.RuneLength(2, models.AuthorNameMaxLength).Error("Author name must be between 2 and 100 characters long."),
		),
		validation.Field(&f.AuthorEmail,
			validation.Required.Error("Author email is required."),
			is.EmailFormat.Error("Please provide a valid email address."),
			validation.RuneLength(0, models.EmailMaxLength).Error("Email must be at most 120 characters long."),
		),
		validation.Field(&f.Title,
			validation.Required.Error("Blog title is required."),
			validation.RuneLength(5, models.TitleMaxLength).Error("Blog title must be between 5 and 200 characters long."),
		),
		validation.Field(&f.Content,
			validation.Required.Error("Blog content is required."),
			validation.RuneLength(10, 0).Error("Blog content must be at least 10 characters long."),
		),
		validation.Field(&f.Date,
			validation.Required.Error("Publication date is required."),
			validation.By(func(value any) error {
				if _, err := parseFormDate(value.(string)); err != nil {
					return errors.New("Please provide a valid date.")
				}
				return nil
			}),
		),
	)
}

// fieldErrors flattens ozzo errors into a stable, form-ordered list.
func fieldErrors(err error) []fieldError {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []fieldError{{Message: err.Error()}}
	}

	order := map[string]int{"author_name": 0, "author_email": 1, "blog_title": 2, "blog_content": 3, "blog_date": 4}
	out := make([]fieldError, 0, len(verrs))
	for field, ferr := range verrs {
		out = append(out, fieldError{Field: field, Message: ferr.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].Field] < order[out[j].Field] })
	return out
}

// parseFormDate accepts YYYY-MM-DD, DD-MM-YYYY and MM/DD/YYYY.
func parseFormDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range formDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quill/internal/models"
	"quill/internal/store"
)

const maxListLimit = 100

// listParams echoes the accepted query back to templates.
type listParams struct {
	Search   string
	Title    string
	AuthorID int64
	Sort     models.SortKey
	Order    models.SortOrder
}

func parseBlogFilter(r *http.Request) (store.BlogFilter, listParams, error) {
	q := r.URL.Query()

	limit, err := queryInt(r, "limit")
	if err != nil {
		return store.BlogFilter{}, listParams{}, err
	}
	if limit > maxListLimit {
		return store.BlogFilter{}, listParams{}, badRequestCode(fmt.Errorf("limit must be <= %d", maxListLimit), ErrCodeInvalidQuery)
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return store.BlogFilter{}, listParams{}, err
	}
	featured, err := queryBool(r, "featured")
	if err != nil {
		return store.BlogFilter{}, listParams{}, err
	}

	sortKey, order, err := models.ParseSort(q.Get("sort"), q.Get("order"))
	if err != nil {
		return store.BlogFilter{}, listParams{}, badRequestCode(err, ErrCodeInvalidSort)
	}

	var authorID int64
	if raw := strings.TrimSpace(q.Get("author")); raw != "" {
		authorID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || authorID <= 0 {
			return store.BlogFilter{}, listParams{}, badRequest(fmt.Errorf("invalid author"))
		}
	}

	params := listParams{
		Search:   strings.TrimSpace(q.Get("search")),
		Title:    strings.TrimSpace(q.Get("title")),
		AuthorID: authorID,
		Sort:     sortKey,
		Order:    order,
	}
	filter := store.BlogFilter{
		TitleContains: params.Title,
		Search:        params.Search,
		AuthorID:      authorID,
		Featured:      featured,
		PublishedOnly: true,
		SortBy:        sortKey,
		SortOrder:     order,
		Limit:         limit,
		Offset:        offset,
	}
	return filter, params, nil
}

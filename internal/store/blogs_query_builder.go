package store

import (
	"fmt"
	"strings"

	"quill/internal/models"
)

type listQueryBuilder struct {
	filter BlogFilter
	query  string
	args   []any
	where  []string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildListQuery(filter BlogFilter) (string, []any, error) {
	builder := &listQueryBuilder{filter: filter}
	builder.buildSelect()
	builder.buildWhere()
	if err := builder.buildOrder(); err != nil {
		return "", nil, err
	}
	builder.buildPagination()
	return builder.query, builder.args, nil
}

func (b *listQueryBuilder) buildSelect() {
	b.query = "SELECT " + blogColumns + blogFrom
}

func (b *listQueryBuilder) buildWhere() {
	b.appendTitleContains()
	b.appendSearch()
	b.appendAuthor()
	b.appendFlags()

	if len(b.where) == 0 {
		return
	}
	b.query += " WHERE " + strings.Join(b.where, " AND ")
}

func (b *listQueryBuilder) buildOrder() error {
	key := b.filter.SortBy
	if key == "" {
		key = models.SortDate
	}
	if !models.IsValidSortKey(key) {
		return invalid("sort", fmt.Sprintf("invalid sort: %s", key))
	}

	order := b.filter.SortOrder
	if order == "" {
		order = models.DefaultOrder(key)
	}
	var dir string
	switch order {
	case models.OrderAsc:
		dir = "ASC"
	case models.OrderDesc:
		dir = "DESC"
	default:
		return invalid("order", fmt.Sprintf("invalid order: %s", order))
	}

	var columns []string
	switch key {
	case models.SortDate:
		columns = []string{"b.published_on", "b.created_at"}
	case models.SortViews:
		columns = []string{"b.view_count"}
	case models.SortLikes:
		columns = []string{"b.like_count"}
	case models.SortTitle:
		columns = []string{"b.title COLLATE NOCASE"}
	case models.SortAuthor:
		columns = []string{"a.name COLLATE NOCASE"}
	}
	columns = append(columns, "b.id")

	for i := range columns {
		columns[i] += " " + dir
	}
	b.query += " ORDER BY " + strings.Join(columns, ", ")
	return nil
}

func (b *listQueryBuilder) buildPagination() {
	hasLimit := false
	if b.filter.Limit > 0 {
		b.query += " LIMIT ?"
		b.args = append(b.args, b.filter.Limit)
		hasLimit = true
	}
	if b.filter.Offset > 0 {
		if !hasLimit {
			b.query += " LIMIT -1"
		}
		b.query += " OFFSET ?"
		b.args = append(b.args, b.filter.Offset)
	}
}

func (b *listQueryBuilder) appendTitleContains() {
	value := strings.TrimSpace(b.filter.TitleContains)
	if value == "" {
		return
	}
	b.where = append(b.where, `b.title LIKE '%' || ? || '%' ESCAPE '\'`)
	b.args = append(b.args, likeEscaper.Replace(value))
}

func (b *listQueryBuilder) appendSearch() {
	value := strings.TrimSpace(b.filter.Search)
	if value == "" {
		return
	}
	pattern := likeEscaper.Replace(value)
	b.where = append(b.where, `(b.title LIKE '%' || ? || '%' ESCAPE '\' OR b.content LIKE '%' || ? || '%' ESCAPE '\' OR a.name LIKE '%' || ? || '%' ESCAPE '\')`)
	b.args = append(b.args, pattern, pattern, pattern)
}

func (b *listQueryBuilder) appendAuthor() {
	if b.filter.AuthorID <= 0 {
		return
	}
	b.where = append(b.where, "b.author_id = ?")
	b.args = append(b.args, b.filter.AuthorID)
}

func (b *listQueryBuilder) appendFlags() {
	if b.filter.Featured != nil {
		b.where = append(b.where, "b.featured = ?")
		b.args = append(b.args, boolToInt(*b.filter.Featured))
	}
	if b.filter.PublishedOnly {
		b.where = append(b.where, "b.published = 1")
	}
}

package models

import (
	"fmt"
	"strings"
)

// SortKey defines the supported blog list orderings.
type SortKey string

const (
	SortDate   SortKey = "date"
	SortViews  SortKey = "views"
	SortLikes  SortKey = "likes"
	SortTitle  SortKey = "title"
	SortAuthor SortKey = "author"
)

// SortOrder is the direction of a blog list ordering.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	TitleMaxLength      = 200
	AuthorNameMaxLength = 100
	EmailMaxLength      = 120
	SlugMaxLength       = 50
	ExcerptMaxLength    = 150

	wordsPerMinute = 200
	longFormWords  = 1000
)

var validSortKeys = map[SortKey]struct{}{
	SortDate:   {},
	SortViews:  {},
	SortLikes:  {},
	SortTitle:  {},
	SortAuthor: {},
}

// legacySortAliases maps the sort values used by older page links.
var legacySortAliases = map[string]struct {
	key   SortKey
	order SortOrder
}{
	"newest":  {SortDate, OrderDesc},
	"oldest":  {SortDate, OrderAsc},
	"popular": {SortViews, OrderDesc},
	"liked":   {SortLikes, OrderDesc},
}

func IsValidSortKey(key SortKey) bool {
	_, ok := validSortKeys[key]
	return ok
}

// ParseSort parses a sort key and optional order. Empty values select
// newest-first. Legacy aliases such as "newest" carry their own order,
// which an explicit order overrides.
func ParseSort(rawKey, rawOrder string) (SortKey, SortOrder, error) {
	key := strings.ToLower(strings.TrimSpace(rawKey))
	order, err := ParseSortOrder(rawOrder)
	if err != nil {
		return "", "", err
	}

	if key == "" {
		key = string(SortDate)
	}
	if alias, ok := legacySortAliases[key]; ok {
		if order == "" {
			order = alias.order
		}
		return alias.key, order, nil
	}

	sortKey := SortKey(key)
	if !IsValidSortKey(sortKey) {
		return "", "", fmt.Errorf("invalid sort: %s", key)
	}
	if order == "" {
		order = DefaultOrder(sortKey)
	}
	return sortKey, order, nil
}

// ParseSortOrder parses asc/desc. Empty input returns an empty order.
func ParseSortOrder(raw string) (SortOrder, error) {
	value := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "", OrderAsc, OrderDesc:
		return value, nil
	default:
		return "", fmt.Errorf("invalid order: %s", value)
	}
}

// DefaultOrder returns the natural direction for a sort key.
func DefaultOrder(key SortKey) SortOrder {
	switch key {
	case SortTitle, SortAuthor:
		return OrderAsc
	default:
		return OrderDesc
	}
}

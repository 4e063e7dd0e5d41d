// Package paging implements page/per_page pagination for list endpoints.
//
// Lists are offset-paged: the client sends ?page=N&per_page=M and receives
// {items, meta:{current_page, total_pages, total_count}}, where the totals
// describe the filtered set the items were drawn from.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultPerPage is used when the request does not name a page size.
const DefaultPerPage = 3

// MaxPerPage caps the page size a client can ask for.
const MaxPerPage = 100

// Params is a validated page request. Page is 1-based.
type Params struct {
	Page    int
	PerPage int
}

// Parse reads page and per_page from the query string. Missing or invalid
// values fall back to page 1 and defaultPerPage (DefaultPerPage when <= 0).
func Parse(r *http.Request, defaultPerPage int) Params {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	p := Params{
		Page:    positiveInt(query.Get(r, "page"), 1),
		PerPage: positiveInt(query.Get(r, "per_page"), defaultPerPage),
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func positiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of documents before this page.
func (p Params) Skip() int64 { return int64(p.Page-1) * int64(p.PerPage) }

// Limit is the page size.
func (p Params) Limit() int64 { return int64(p.PerPage) }

// FindOptions returns Find options selecting this page in the given order.
// An _id tiebreaker is appended so pages are stable.
func (p Params) FindOptions(sort bson.D) *options.FindOptions {
	ordered := make(bson.D, 0, len(sort)+1)
	ordered = append(ordered, sort...)
	ordered = append(ordered, bson.E{Key: "_id", Value: 1})
	return options.Find().SetSort(ordered).SetSkip(p.Skip()).SetLimit(p.Limit())
}

// Meta describes where a page sits in the filtered result set.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
}

// NewMeta computes totals for a result set of total documents.
// total_pages is ceil(total/per_page), and 0 for an empty set.
func NewMeta(p Params, total int64) Meta {
	pages := 0
	if p.PerPage > 0 && total > 0 {
		pages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{CurrentPage: p.Page, TotalPages: pages, TotalCount: total}
}

// Page is the JSON envelope for a paged list.
type Page[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}

// NewPage builds the envelope. A nil slice is rendered as [].
func NewPage[T any](items []T, p Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: NewMeta(p, total)}
}

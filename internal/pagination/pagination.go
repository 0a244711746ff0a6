// Package pagination implements page-numbered list envelopes.
package pagination

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	pageParam  = "page"
	limitParam = "limit"

	// maxLimit caps the page size a client may request. maxPage bounds
	// the page number so the computed offset stays within the range the
	// queries accept.
	maxLimit = 100
	maxPage  = 1_000_000
)

type Params struct {
	Page  int
	Limit int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseParams reads page and limit from the query string, falling back
// to page 1 and the configured default page size.
func ParseParams(query url.Values, defaultLimit int) (Params, error) {
	params := Params{Page: 1, Limit: defaultLimit}

	if raw := query.Get(pageParam); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 || page > maxPage {
			return Params{}, fmt.Errorf("invalid page %q", raw)
		}
		params.Page = page
	}

	if raw := query.Get(limitParam); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return Params{}, fmt.Errorf("invalid limit %q", raw)
		}
		params.Limit = min(limit, maxLimit)
	}

	return params, nil
}

// Page is the envelope returned by every list endpoint. Next and
// Previous are page links, null at either end of the collection.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope for one page of results. Links reuse the
// request URL with only the page parameter changed.
func NewPage[T any](r *http.Request, count int64, params Params, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}

	page := Page[T]{
		Count:   count,
		Results: results,
	}

	if int64(params.Page)*int64(params.Limit) < count {
		next := pageURL(r, params.Page+1)
		page.Next = &next
	}
	if params.Page > 1 {
		prev := pageURL(r, params.Page-1)
		page.Previous = &prev
	}

	return page
}

func pageURL(r *http.Request, page int) string {
	u := *r.URL
	query := u.Query()
	query.Set(pageParam, strconv.Itoa(page))
	u.RawQuery = query.Encode()
	return u.String()
}

package storage

import (
	"github.com/papercomputeco/tagstash/pkg/record"
)

const (
	// DefaultLimit is the page size used when none is given.
	DefaultLimit = 50

	// MaxLimit bounds the page size.
	MaxLimit = 500
)

// SearchOptions selects and orders a page of records.
type SearchOptions struct {
	Query  record.Query
	Limit  int
	Offset int
	SortBy record.SortField
	Order  record.SortOrder
}

// Normalized returns a copy of o with defaults applied and bounds enforced.
func (o SearchOptions) Normalized() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.SortBy != record.SortByUpdatedAt {
		o.SortBy = record.SortByCreatedAt
	}
	if o.Order != record.SortAsc {
		o.Order = record.SortDesc
	}
	return o
}

// Page is one page of search results.
type Page struct {
	Records []*record.Record `json:"records"`
	Total   int              `json:"total"`
	HasMore bool             `json:"has_more"`
}

// NewPage builds a Page for records fetched at offset out of total matches.
func NewPage(records []*record.Record, total, offset int) *Page {
	if records == nil {
		records = []*record.Record{}
	}
	return &Page{
		Records: records,
		Total:   total,
		HasMore: offset+len(records) < total,
	}
}

// TagCount is the number of records using a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

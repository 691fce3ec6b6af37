package search

import "math"

// UnboundedLength is the page-size sentinel used by export queries that
// stream the full result set.
const UnboundedLength = math.MaxInt32

// Pagination describes the slice of a filtered result set a caller wants.
// ResultSize carries the cached total row count across repeated calls with
// the same filter so the count query only runs for the first page.
type Pagination struct {
	Start      int    `json:"start" mapstructure:"start"`
	Length     int    `json:"length" mapstructure:"length"`
	SortColumn string `json:"sortColumn" mapstructure:"sortColumn"`
	Ascending  bool   `json:"ascending" mapstructure:"ascending"`
	ResultSize *int64 `json:"resultSize" mapstructure:"resultSize"`
}

// DefaultPagination returns an unbounded, ascending pagination.
func DefaultPagination() *Pagination {
	return &Pagination{Length: UnboundedLength, Ascending: true}
}

// HasSize reports whether a previous fetch already produced the total count.
func (p *Pagination) HasSize() bool {
	return p.ResultSize != nil
}

// UpdateSortColumn validates the requested sort column against the entity's
// allow-list, falling back to the given default when none was requested.
// It must be called before SortQuery.
func (p *Pagination) UpdateSortColumn(allowed []string, fallback string) error {
	column, err := CheckSortColumn(p.SortColumn, allowed, fallback)
	if err != nil {
		return err
	}
	p.SortColumn = column
	return nil
}

// SortQuery returns the ORDER BY fragment for the resolved sort column, or
// the empty string when no column is resolved.
func (p *Pagination) SortQuery() string {
	if p.SortColumn == "" {
		return ""
	}
	if p.Ascending {
		return " ORDER BY " + p.SortColumn + " ASC"
	}
	return " ORDER BY " + p.SortColumn + " DESC"
}

// LimitQuery returns the pagination fragment with two placeholders bound,
// in order, to the values returned by LimitParams.
func (p *Pagination) LimitQuery() string {
	return " OFFSET ? LIMIT ?"
}

// LimitParams returns (start, length) in binding order.
func (p *Pagination) LimitParams() (int, int) {
	length := p.Length
	if length <= 0 {
		length = UnboundedLength
	}
	return p.Start, length
}

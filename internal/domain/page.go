package domain

// Trip list paging limits shared by the API and its client.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	MaxPage          = 1 << 20
)

// PaginationParams selects one page of a trip list. Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams reads optional page/limit query values. Missing or
// non-positive values fall back to page 1 and DefaultPageLimit. Page is
// capped at MaxPage and the limit at MaxPageLimit, so Offset cannot overflow.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of summaries before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// More reports whether pages follow this one, given that it returned got
// summaries out of total.
func (p PaginationParams) More(got int, total int64) bool {
	return got == p.Limit && int64(p.Offset()+got) < total
}

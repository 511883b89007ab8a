package history

// Page is one page of a tenant's history, newest first.
type Page struct {
	Items    []*Record `json:"items"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	HasMore  bool      `json:"has_more"`
}

// NewPage builds a Page. A full page reports HasMore since the next one may be
// non-empty.
func NewPage(items []*Record, page, pageSize int) Page {
	if items == nil {
		items = []*Record{}
	}
	return Page{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasMore:  pageSize > 0 && len(items) == pageSize,
	}
}

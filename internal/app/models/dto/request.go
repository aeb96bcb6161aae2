package dto

// ListQuery carries the parsed query string of a collection listing.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	// Filters maps a query parameter name to its exact-match value. Only
	// parameters declared by the resource are present.
	Filters map[string]string
}

// Filter returns the value of filter name, or "" when absent.
func (q ListQuery) Filter(name string) string {
	if q.Filters == nil {
		return ""
	}
	return q.Filters[name]
}

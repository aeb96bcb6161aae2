package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abiturient/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
	DefaultPage     = 1
)

// CalculateOffsetLimit normalizes a 1-based page and a page size and returns
// the SQL offset and limit for them. The offset saturates at math.MaxInt64,
// the largest OFFSET PostgreSQL accepts.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	limit = normalizeSize(size)
	if page < 1 {
		page = DefaultPage
	}
	skipped := uint64(page - 1)
	if skipped > math.MaxInt64/uint64(limit) {
		return math.MaxInt64, limit
	}
	return skipped * uint64(limit), limit
}

func normalizeSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

// NewPagination builds the pagination block of a listing. Pages is
// ceil(total/limit) and 0 for an empty result.
func NewPagination(total int64, page, limit int) dto.Pagination {
	limit = normalizeSize(limit)
	if page < 1 {
		page = DefaultPage
	}

	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return dto.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// ParsePaginationParams reads page and limit. Missing, non-numeric or
// non-positive values fall back to the defaults; limit is capped at MaxPageSize.
func ParsePaginationParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	limit, err = strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil {
		limit = DefaultPageSize
	}
	return page, normalizeSize(limit)
}

// ParseListQuery reads the listing contract: page, limit, search and the
// exact-match filters named in filters. Empty filter values are ignored.
func ParseListQuery(c *gin.Context, filters []string) dto.ListQuery {
	page, limit := ParsePaginationParams(c)
	q := dto.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}
	for _, name := range filters {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string, len(filters))
			}
			q.Filters[name] = v
		}
	}
	return q
}

package helper

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 200
)

type PageParams struct {
	Page  int
	Limit int
}

func (p PageParams) Offset() int { return (p.Page - 1) * p.Limit }

// ParsePage membaca page/limit dari query string (bentuk lama API).
func ParsePage(c *fiber.Ctx) PageParams {
	page := atoiDefault(strings.TrimSpace(c.Query("page")), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	limit := atoiDefault(strings.TrimSpace(c.Query("limit")), DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageParams{Page: page, Limit: limit}
}

// Pagination untuk response: {current_page, limit, total_records, total_pages}
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	Limit        int   `json:"limit"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
}

func BuildPagination(total int64, p PageParams) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Pagination{
		CurrentPage:  p.Page,
		Limit:        p.Limit,
		TotalRecords: total,
		TotalPages:   totalPages,
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

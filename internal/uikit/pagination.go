// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Default list sizes.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Pagination holds pagination data for list templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	Pages       []PaginationPage
}

// PaginationPage represents a single page link.
type PaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// ShouldShow returns true if there is more than one page.
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// Range describes the items on the current page, e.g. "11-20 of 42".
func (p Pagination) Range() string {
	if p.TotalItems == 0 {
		return "0 of 0"
	}
	start := (p.CurrentPage-1)*p.PerPage + 1
	end := min(p.CurrentPage*p.PerPage, p.TotalItems)
	return fmt.Sprintf("%d-%d of %d", start, end, p.TotalItems)
}

// Paginate slices items for the page and page size requested in r. The API
// returns whole collections, so paging happens here.
func Paginate[T any](r *http.Request, items []T, basePath string) ([]T, Pagination) {
	perPage := ParseIntParam(r, "per_page", DefaultPerPage, 1, MaxPerPage)
	page := ClampPage(ParseIntParam(r, "page", 1, 1, 0), CalculateTotalPages(len(items), perPage))
	p := BuildPagination(page, len(items), perPage, basePath, r.URL.Query())

	start := (page - 1) * perPage
	if start > len(items) {
		start = len(items)
	}
	end := min(start+perPage, len(items))
	return items[start:end], p
}

// BuildPagination creates pagination data. Query parameters other than page
// are preserved in the generated links.
func BuildPagination(currentPage, totalItems, perPage int, basePath string, query url.Values) Pagination {
	totalPages := CalculateTotalPages(totalItems, perPage)

	params := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			params[k] = v
		}
	}
	buildURL := func(page int) string {
		q := make(url.Values, len(params)+1)
		for k, v := range params {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		return basePath + "?" + q.Encode()
	}

	p := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
	}
	if p.HasPrev {
		p.PrevURL = buildURL(currentPage - 1)
	}
	if p.HasNext {
		p.NextURL = buildURL(currentPage + 1)
	}
	p.Pages = BuildPaginationPages(currentPage, totalPages, buildURL,
		func(number int, pageURL string, isCurrent, isEllipsis bool) PaginationPage {
			return PaginationPage{Number: number, URL: pageURL, IsCurrent: isCurrent, IsEllipsis: isEllipsis}
		})
	return p
}

// BuildPaginationPages generates page links with ellipsis. It shows up to 5
// page numbers centered on the current page and always includes the first
// and last pages.
func BuildPaginationPages[T any](
	currentPage, totalPages int,
	buildURL func(int) string,
	makePage func(number int, pageURL string, isCurrent, isEllipsis bool) T,
) []T {
	var pages []T

	start := currentPage - 2
	end := currentPage + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		pages = append(pages, makePage(1, buildURL(1), false, false))
		if start > 2 {
			pages = append(pages, makePage(0, "", false, true))
		}
	}

	for i := start; i <= end; i++ {
		pages = append(pages, makePage(i, buildURL(i), i == currentPage, false))
	}

	if end < totalPages {
		if end < totalPages-1 {
			pages = append(pages, makePage(0, "", false, true))
		}
		pages = append(pages, makePage(totalPages, buildURL(totalPages), false, false))
	}

	return pages
}

// CalculateTotalPages returns at least 1.
func CalculateTotalPages(totalItems, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return max((totalItems+perPage-1)/perPage, 1)
}

// ClampPage ensures the page number is within [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// ParseIntParam parses an integer query parameter. Missing, invalid or
// out-of-range values yield defaultVal; a zero bound is not checked.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if minVal > 0 && val < minVal {
		return defaultVal
	}
	if maxVal > 0 && val > maxVal {
		return defaultVal
	}
	return val
}

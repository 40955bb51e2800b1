package user

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Sort keys accepted by PageRequest.SortBy.
const (
	SortByUsername  = "username"
	SortByEmail     = "email"
	SortByCreatedAt = "created_at"
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// DefaultPageSize is used when the caller does not ask for a page size.
const DefaultPageSize = 20

// PageRequest selects one page of a sorted result set. PageIndex is 0-based.
type PageRequest struct {
	PageIndex int
	PageSize  int
	SortBy    string
	SortOrder string
}

// DefaultPageRequest returns the first page sorted by creation time, newest first.
func DefaultPageRequest() PageRequest {
	return PageRequest{
		PageIndex: 0,
		PageSize:  DefaultPageSize,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

// Normalize fills in the default sort and checks the request.
// It returns ErrInvalidPageRequest for a negative index, a non-positive size,
// or an unknown sort key or direction.
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.PageIndex < 0 {
		return p, fmt.Errorf("%w: page index %d is negative", ErrInvalidPageRequest, p.PageIndex)
	}
	if p.PageSize <= 0 {
		return p, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidPageRequest, p.PageSize)
	}
	if p.PageIndex > math.MaxInt32/p.PageSize {
		return p, fmt.Errorf("%w: page index %d is out of range", ErrInvalidPageRequest, p.PageIndex)
	}

	if p.SortBy == "" {
		p.SortBy = SortByCreatedAt
	}
	switch p.SortBy {
	case SortByUsername, SortByEmail, SortByCreatedAt:
	default:
		return p, fmt.Errorf("%w: unknown sort key %q", ErrInvalidPageRequest, p.SortBy)
	}

	p.SortOrder = strings.ToUpper(p.SortOrder)
	if p.SortOrder == "" {
		p.SortOrder = SortDesc
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		return p, fmt.Errorf("%w: unknown sort order %q", ErrInvalidPageRequest, p.SortOrder)
	}

	return p, nil
}

// Offset is the number of matches skipped before this page.
func (p PageRequest) Offset() int {
	return p.PageIndex * p.PageSize
}

// PageResult is one page of users plus the number of distinct matches overall.
type PageResult struct {
	Items     []*User
	Total     int
	PageIndex int
	PageSize  int
}

// Executor runs composed filters against a Repository.
type Executor struct {
	repo        Repository
	maxPageSize int
}

// NewExecutor creates an Executor. A maxPageSize of 0 disables the upper bound.
func NewExecutor(repo Repository, maxPageSize int) *Executor {
	return &Executor{repo: repo, maxPageSize: maxPageSize}
}

// Execute validates page and returns the matching page of users.
func (e *Executor) Execute(ctx context.Context, filter Filter, page PageRequest) (*PageResult, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	if e.maxPageSize > 0 && page.PageSize > e.maxPageSize {
		return nil, fmt.Errorf("%w: page size %d exceeds %d", ErrInvalidPageRequest, page.PageSize, e.maxPageSize)
	}

	res, err := e.repo.FindByFilter(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("find users by filter failed: %w", err)
	}
	if res.Items == nil {
		res.Items = []*User{}
	}
	return res, nil
}

// sortUsers orders users by the page's sort key, breaking ties on ID so that
// page boundaries are stable across calls.
func sortUsers(users []*User, page PageRequest) {
	slices.SortFunc(users, func(a, b *User) int {
		var c int
		switch page.SortBy {
		case SortByUsername:
			c = compareText(a.Username, b.Username)
		case SortByEmail:
			c = compareText(a.Email, b.Email)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if page.SortOrder == SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// compareText orders case-insensitively first, the way a linguistic collation
// does, then falls back to the raw bytes.
func compareText(a, b string) int {
	if c := cmp.Compare(fold(a), fold(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// pageWindow returns the slice of sorted covered by page.
// An index past the last page yields an empty slice.
func pageWindow(sorted []*User, page PageRequest) []*User {
	start := page.Offset()
	if start >= len(sorted) {
		return []*User{}
	}
	end := min(start+page.PageSize, len(sorted))
	return sorted[start:end]
}

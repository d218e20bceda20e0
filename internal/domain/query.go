package domain

import (
	"strings"
)

// SortField names a task attribute the list can be ordered by.
type SortField string

const (
	SortTitle       SortField = "title"
	SortDescription SortField = "description"
	SortStatus      SortField = "status"
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
)

func (f SortField) Valid() bool {
	switch f {
	case SortTitle, SortDescription, SortStatus, SortCreatedAt, SortUpdatedAt:
		return true
	}
	return false
}

type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

func (s Sort) String() string {
	if s.Desc {
		return string(s.Field) + ":desc"
	}
	return string(s.Field) + ":asc"
}

// ListQuery selects and orders tasks. An empty Statuses matches every task.
type ListQuery struct {
	Statuses []Status
	Sort     Sort
}

// Key is a stable textual form of q, used for cache keys.
func (q ListQuery) Key() string {
	parts := make([]string, len(q.Statuses))
	for i, s := range q.Statuses {
		parts[i] = string(s)
	}
	return "status=" + strings.Join(parts, ",") + ";sort=" + q.Sort.String()
}

// ParseSort reads "field:direction". Direction is ascending unless it is
// "desc". An empty or unknown field yields DefaultSort.
func ParseSort(raw string) Sort {
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ":")
	f := SortField(strings.TrimSpace(field))
	if !f.Valid() {
		return DefaultSort
	}
	return Sort{Field: f, Desc: strings.EqualFold(strings.TrimSpace(dir), "desc")}
}

// ParseStatuses keeps the valid, distinct statuses from raw query values.
// Unknown values are dropped rather than rejected.
func ParseStatuses(raw []string) []Status {
	var out []Status
	seen := make(map[Status]bool, len(raw))
	for _, r := range raw {
		s := Status(strings.TrimSpace(r))
		if !s.Valid() || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// NewListQuery builds a query from raw status values and a raw sort string.
func NewListQuery(statuses []string, sort string) ListQuery {
	return ListQuery{Statuses: ParseStatuses(statuses), Sort: ParseSort(sort)}
}

package console

import "strings"

// Filter selects which users the list shows
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

// Filters lists every filter in display order
var Filters = []Filter{FilterAll, FilterActive, FilterInactive}

// ParseFilter maps user input onto a Filter; anything unknown means all
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive:
		return FilterActive
	case FilterInactive:
		return FilterInactive
	default:
		return FilterAll
	}
}

// IsActive is the is_active query value for f, nil for FilterAll
func (f Filter) IsActive() *bool {
	switch f {
	case FilterActive:
		active := true
		return &active
	case FilterInactive:
		active := false
		return &active
	default:
		return nil
	}
}

// Label is the option text shown in the filter select
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active Only"
	case FilterInactive:
		return "Inactive Only"
	default:
		return "All Users"
	}
}

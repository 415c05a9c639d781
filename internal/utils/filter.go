package utils

import (
	"errors"
	"strconv"
)

var ErrUnknownFilterField = errors.New("unknown filter field")
var ErrInvalidFilterValue = errors.New("invalid filter value")

// FilterKind selects how a filter value is converted before querying.
type FilterKind int

const (
	FilterString FilterKind = iota
	FilterBool
)

// FilterField maps a public field name onto a column.
type FilterField struct {
	Column string
	Kind   FilterKind
}

// Filter is a validated single-field equality filter.
type Filter struct {
	Column string
	Value  interface{}
}

// ParseFilter validates field against fields. A missing field or value
// yields a nil filter.
func ParseFilter(field, value string, fields map[string]FilterField) (*Filter, error) {
	if field == "" || value == "" {
		return nil, nil
	}

	f, ok := fields[field]
	if !ok {
		return nil, ErrUnknownFilterField
	}

	switch f.Kind {
	case FilterBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, ErrInvalidFilterValue
		}
		return &Filter{Column: f.Column, Value: b}, nil
	default:
		return &Filter{Column: f.Column, Value: value}, nil
	}
}

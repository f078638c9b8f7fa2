package rank

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matheuskafuri/headlines/internal/headline"
)

// Key names the metric a collection is ordered by.
type Key string

const (
	Views  Key = "views"
	Rating Key = "rating"
)

var ErrUnknownKey = errors.New("unknown sort key")

// Keys returns every valid key in display order.
func Keys() []Key {
	return []Key{Views, Rating}
}

// ParseKey accepts "views" or "rating", case-insensitively. There is no
// default: an empty string is an error.
func ParseKey(s string) (Key, error) {
	switch Key(strings.ToLower(strings.TrimSpace(s))) {
	case Views:
		return Views, nil
	case Rating:
		return Rating, nil
	}
	return "", fmt.Errorf("%w: %q (valid: views, rating)", ErrUnknownKey, s)
}

// Label is the human form shown on sort controls.
func (k Key) Label() string {
	switch k {
	case Views:
		return "Views"
	case Rating:
		return "Rating"
	}
	return string(k)
}

// Rank returns a copy of records ordered by key, highest first. Records with
// equal values keep their input order. The input slice is not modified.
func Rank(records []headline.Record, key Key) ([]headline.Record, error) {
	cmp, err := comparator(key)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(records)
	if out == nil {
		out = []headline.Record{}
	}
	slices.SortStableFunc(out, cmp)
	return out, nil
}

func comparator(key Key) (func(a, b headline.Record) int, error) {
	switch key {
	case Views:
		return func(a, b headline.Record) int {
			return descending(float64(a.Views), float64(b.Views))
		}, nil
	case Rating:
		return func(a, b headline.Record) int {
			return descending(a.Rating, b.Rating)
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, string(key))
}

func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

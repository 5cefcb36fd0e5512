package domain

import "fmt"

// Collection names one of the document kinds the API serves.
type Collection string

const (
	Reviews     Collection = "reviews"
	Dealerships Collection = "dealerships"
	Cars        Collection = "cars"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{Reviews, Dealerships, Cars}

func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// IDField is the generated identifier every stored document carries.
const IDField = "_id"

// DealerIDField is the only field with meaning to the service: cars are
// listed per dealership by it.
const DealerIDField = "dealer_id"

// Document is a schema-flexible JSON object.
type Document map[string]any

// ID returns the generated identifier, or "" before insertion.
func (d Document) ID() string {
	s, _ := d[IDField].(string)
	return s
}

// Str returns the string value of a top-level field.
func (d Document) Str(field string) (string, bool) {
	s, ok := d[field].(string)
	return s, ok
}

// Clone returns a deep copy so callers never share nested maps or slices
// with a store or cache.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = cloneValue(x)
		}
		return m
	case Document:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = cloneValue(x)
		}
		return s
	default:
		return v
	}
}

// Filter matches documents whose top-level fields equal the given strings.
// A field holding a non-string value never matches. An empty filter
// matches everything.
type Filter map[string]string

// Matches reports whether d satisfies every condition of f.
func (f Filter) Matches(d Document) bool {
	for k, want := range f {
		got, ok := d.Str(k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// ByDealer is the filter used to list the cars of one dealership.
func ByDealer(dealerID string) Filter {
	return Filter{DealerIDField: dealerID}
}

package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dealership_api/internal/domain"
)

func toBSON(d domain.Document) bson.M {
	m := make(bson.M, len(d)+1)
	for k, v := range d {
		m[k] = v
	}
	return m
}

// fromBSON turns driver values back into plain JSON-friendly values so
// every backend returns the same shapes.
func fromBSON(m bson.M) domain.Document {
	out := make(domain.Document, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = plain(x)
		}
		return m
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = plain(x)
		}
		return s
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}

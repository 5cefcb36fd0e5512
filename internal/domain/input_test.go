package domain_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership_api/internal/domain"
)

func TestDecodeDocument_KeepsEveryField(t *testing.T) {
	body := []byte(`{"name":"Acme Motors","city":"Springfield","extra":{"floors":2},"tags":["a","b"]}`)

	d, err := domain.DecodeDocument(domain.Dealerships, body)
	require.NoError(t, err)

	assert.Equal(t, "Acme Motors", d["name"])
	assert.Equal(t, "Springfield", d["city"])
	assert.Equal(t, map[string]any{"floors": 2.0}, d["extra"])
	assert.Equal(t, []any{"a", "b"}, d["tags"])
}

func TestDecodeDocument_Rejects(t *testing.T) {
	cases := []struct {
		name string
		coll domain.Collection
		body string
		want string
	}{
		{"not json", domain.Reviews, `{"name":`, "valid JSON"},
		{"array", domain.Reviews, `[{"name":"x"}]`, "JSON object"},
		{"scalar", domain.Cars, `"car"`, "JSON object"},
		{"empty object", domain.Dealerships, `{}`, "at least one field"},
		{"client id", domain.Reviews, `{"_id":"abc","name":"x"}`, "_id"},
		{"wrong type", domain.Reviews, `{"car_year":"2020"}`, "car_year must be a number"},
		{"dealer id number", domain.Cars, `{"dealer_id":15}`, "dealer_id must be a string"},
		{"dealer id empty", domain.Cars, `{"dealer_id":""}`, "dealer_id length must be at least 1"},
		{"year too small", domain.Cars, `{"year":1700}`, "year must be greater than or equal to 1886"},
		{"latitude", domain.Dealerships, `{"lat":123.4}`, "lat must be less than or equal to 90"},
		{"purchase flag", domain.Reviews, `{"purchase":"yes"}`, "purchase must be a boolean"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.DecodeDocument(tc.coll, []byte(tc.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), "want validation kind, got %v", err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeDocument_TooLarge(t *testing.T) {
	body := `{"review":"` + strings.Repeat("x", domain.MaxBodyBytes) + `"}`
	_, err := domain.DecodeDocument(domain.Reviews, []byte(body))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidationError_ListsAllProblems(t *testing.T) {
	_, err := domain.DecodeDocument(domain.Cars, []byte(`{"year":1,"mileage":-5}`))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)
}

func TestFilter_Matches(t *testing.T) {
	f := domain.ByDealer("15")
	assert.True(t, f.Matches(domain.Document{"dealer_id": "15", "make": "Audi"}))
	assert.False(t, f.Matches(domain.Document{"dealer_id": "150"}))
	assert.False(t, f.Matches(domain.Document{"dealer_id": 15.0}))
	assert.False(t, f.Matches(domain.Document{"make": "Audi"}))
	assert.True(t, domain.Filter(nil).Matches(domain.Document{"x": 1}))
}

func TestDocument_CloneIsDeep(t *testing.T) {
	d := domain.Document{"nested": map[string]any{"a": 1}, "list": []any{"x"}}
	c := d.Clone()
	c["nested"].(map[string]any)["a"] = 2
	c["list"].([]any)[0] = "y"

	assert.Equal(t, 1, d["nested"].(map[string]any)["a"])
	assert.Equal(t, "x", d["list"].([]any)[0])
}

func TestKind(t *testing.T) {
	assert.Nil(t, domain.Kind(nil))
	assert.Equal(t, domain.ErrNotFound, domain.Kind(errors.Join(errors.New("x"), domain.ErrNotFound)))
	assert.Equal(t, domain.ErrValidation, domain.Kind(domain.Invalid("bad")))
	assert.Equal(t, domain.ErrInternal, domain.Kind(errors.New("boom")))
	assert.Equal(t, domain.ErrStorageUnavailable, domain.Kind(fmt.Errorf("find: %w", context.DeadlineExceeded)))
}

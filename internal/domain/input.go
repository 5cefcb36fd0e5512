package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxBodyBytes caps accepted request and seed document bodies.
const MaxBodyBytes = 1 << 20

// Known fields per entity. Anything else in a body passes through untouched.

type ReviewInput struct {
	ID           *float64 `json:"id" validate:"omitempty,gte=0"`
	Name         *string  `json:"name" validate:"omitempty,max=200"`
	Dealership   *float64 `json:"dealership" validate:"omitempty,gte=0"`
	Review       *string  `json:"review" validate:"omitempty,max=5000"`
	Purchase     *bool    `json:"purchase"`
	PurchaseDate *string  `json:"purchase_date" validate:"omitempty,max=64"`
	CarMake      *string  `json:"car_make" validate:"omitempty,max=100"`
	CarModel     *string  `json:"car_model" validate:"omitempty,max=100"`
	CarYear      *float64 `json:"car_year" validate:"omitempty,gte=1886,lte=3000"`
}

type DealershipInput struct {
	ID        *float64 `json:"id" validate:"omitempty,gte=0"`
	Name      *string  `json:"name" validate:"omitempty,max=200"`
	FullName  *string  `json:"full_name" validate:"omitempty,max=200"`
	ShortName *string  `json:"short_name" validate:"omitempty,max=200"`
	City      *string  `json:"city" validate:"omitempty,max=200"`
	State     *string  `json:"state" validate:"omitempty,max=200"`
	St        *string  `json:"st" validate:"omitempty,max=200"`
	Address   *string  `json:"address" validate:"omitempty,max=200"`
	Zip       *string  `json:"zip" validate:"omitempty,max=20"`
	Lat       *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Long      *float64 `json:"long" validate:"omitempty,gte=-180,lte=180"`
}

type CarInput struct {
	DealerID *string  `json:"dealer_id" validate:"omitempty,min=1,max=64"`
	Make     *string  `json:"make" validate:"omitempty,max=100"`
	Model    *string  `json:"model" validate:"omitempty,max=100"`
	BodyType *string  `json:"bodyType" validate:"omitempty,max=100"`
	Year     *float64 `json:"year" validate:"omitempty,gte=1886,lte=3000"`
	Mileage  *float64 `json:"mileage" validate:"omitempty,gte=0"`
}

func inputFor(c Collection) (any, error) {
	switch c {
	case Reviews:
		return new(ReviewInput), nil
	case Dealerships:
		return new(DealershipInput), nil
	case Cars:
		return new(CarInput), nil
	}
	return nil, fmt.Errorf("%w: no input schema for collection %q", ErrInternal, c)
}

// DecodeDocument parses a client body into a document for collection c.
// The body must be a non-empty JSON object without an _id; known fields
// must have the right type and satisfy their rules.
func DecodeDocument(c Collection, body []byte) (Document, error) {
	if len(body) > MaxBodyBytes {
		return nil, Invalid(fmt.Sprintf("body exceeds %d bytes", MaxBodyBytes))
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, Invalid("body must be valid JSON")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, Invalid("body must be a JSON object")
	}
	return CheckDocument(c, Document(obj), body)
}

// CheckDocument validates an already-decoded document. body is its JSON
// encoding; pass nil to have it re-encoded.
func CheckDocument(c Collection, d Document, body []byte) (Document, error) {
	if len(d) == 0 {
		return nil, Invalid("body must contain at least one field")
	}
	if _, ok := d[IDField]; ok {
		return nil, Invalid(IDField + " is assigned by the server")
	}

	in, err := inputFor(c)
	if err != nil {
		return nil, err
	}
	if body == nil {
		if body, err = json.Marshal(d); err != nil {
			return nil, Invalid("body must be valid JSON")
		}
	}
	if err := json.Unmarshal(body, in); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, Invalid(fmt.Sprintf("%s must be %s", te.Field, typeName(te.Type)))
		}
		return nil, Invalid("body must be valid JSON")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return d, nil
}

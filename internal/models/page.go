package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entity is a reference record keyed by an ICAO code
type Entity interface {
	Code() string
	Validate() error
}

// Page is the paginated envelope returned by the list endpoints. Endpoints
// that return a bare JSON array decode into a single page holding the whole
// collection.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// SinglePage wraps one record in a page envelope
func SinglePage[T any](item T) Page[T] {
	return Page[T]{
		Content:       []T{item},
		TotalElements: 1,
		TotalPages:    1,
		Size:          1,
		Number:        0,
	}
}

// UnmarshalJSON accepts either the envelope or a bare array
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("failed to decode collection: %w", err)
		}
		*p = Page[T]{
			Content:       items,
			TotalElements: len(items),
			TotalPages:    1,
			Size:          len(items),
		}
		return nil
	}

	var env struct {
		Content       []T `json:"content"`
		TotalElements int `json:"totalElements"`
		TotalPages    int `json:"totalPages"`
		Size          int `json:"size"`
		Number        int `json:"number"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode page: %w", err)
	}
	*p = Page[T]{
		Content:       env.Content,
		TotalElements: env.TotalElements,
		TotalPages:    env.TotalPages,
		Size:          env.Size,
		Number:        env.Number,
	}
	if p.TotalElements < len(p.Content) {
		p.TotalElements = len(p.Content)
	}
	return nil
}

// Distance is the great-circle distance between two airports
type Distance struct {
	From       string `json:"from"`
	To         string `json:"to"`
	DistanceKm Number `json:"distanceKm"`
}

const kmToNauticalMiles = 0.539957

// NauticalMiles converts the distance to nautical miles
func (d Distance) NauticalMiles() float64 {
	return d.DistanceKm.Value * kmToNauticalMiles
}

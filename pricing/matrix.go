package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	ProteinChicken = "chicken"
	ProteinMeat    = "meat"

	TypeSandwich = "sandwich"
	TypeMeal     = "meal"
)

var (
	Proteins = []string{ProteinChicken, ProteinMeat}
	Types    = []string{TypeSandwich, TypeMeal}
)

// Matrix holds variation prices. When a product has both protein and type
// choices it is keyed by protein, then type ({"chicken":{"sandwich":3}}).
// With a single axis it is flat ({"sandwich":3,"meal":5}).
type Matrix map[string]Cell

// Cell is either a single price or a price per type.
type Cell struct {
	Price  *float64
	ByType map[string]float64
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.ByType != nil {
		return json.Marshal(c.ByType)
	}
	if c.Price != nil {
		return json.Marshal(*c.Price)
	}
	return []byte("null"), nil
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}
	if data[0] == '{' {
		var byType map[string]float64
		if err := json.Unmarshal(data, &byType); err != nil {
			return fmt.Errorf("price cell: %w", err)
		}
		*c = Cell{ByType: byType}
		return nil
	}
	var price float64
	if err := json.Unmarshal(data, &price); err != nil {
		return fmt.Errorf("price cell must be a number or an object: %w", err)
	}
	*c = Cell{Price: &price}
	return nil
}

// Nested looks up prices[protein][typ].
func (m Matrix) Nested(protein, typ string) (float64, bool) {
	cell, ok := m[protein]
	if !ok || cell.ByType == nil {
		return 0, false
	}
	price, ok := cell.ByType[typ]
	return price, ok
}

// Flat looks up prices[key] on a single-axis matrix.
func (m Matrix) Flat(key string) (float64, bool) {
	cell, ok := m[key]
	if !ok || cell.Price == nil {
		return 0, false
	}
	return *cell.Price, true
}

// Set stores a flat price. Mostly useful for building matrices in code.
func (m Matrix) Set(key string, price float64) {
	m[key] = Cell{Price: &price}
}

// SetNested stores prices[protein][typ].
func (m Matrix) SetNested(protein, typ string, price float64) {
	cell := m[protein]
	if cell.ByType == nil {
		cell = Cell{ByType: map[string]float64{}}
	}
	cell.ByType[typ] = price
	m[protein] = cell
}

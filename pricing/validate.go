package pricing

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidDiscount = errors.New("discount must be between 0 and 100")

// Validate checks that the matrix covers every combination the flags enable.
func Validate(v Variant) error {
	if v.BasePrice < 0 {
		return errors.New("base price must not be negative")
	}
	if v.Discount < 0 || v.Discount > 100 {
		return ErrInvalidDiscount
	}

	switch {
	case v.HasProteinChoices && v.HasTypeChoices:
		for _, protein := range Proteins {
			for _, typ := range Types {
				price, ok := v.Prices.Nested(protein, typ)
				if !ok {
					return fmt.Errorf("prices.%s.%s is required", protein, typ)
				}
				if price < 0 {
					return fmt.Errorf("prices.%s.%s must not be negative", protein, typ)
				}
			}
		}
	case v.HasProteinChoices:
		for _, protein := range Proteins {
			if err := checkFlat(v.Prices, protein); err != nil {
				return err
			}
		}
	case v.HasTypeChoices:
		for _, typ := range Types {
			if err := checkFlat(v.Prices, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFlat(m Matrix, key string) error {
	price, ok := m.Flat(key)
	if !ok {
		return fmt.Errorf("prices.%s is required", key)
	}
	if price < 0 {
		return fmt.Errorf("prices.%s must not be negative", key)
	}
	return nil
}

// CheckSelection verifies that a customer picked a known value for every
// enabled axis. Pricing itself never fails; this is for input validation.
func CheckSelection(v Variant, protein, typ string) error {
	if v.HasProteinChoices && !slices.Contains(Proteins, protein) {
		return fmt.Errorf("selected protein must be one of %v", Proteins)
	}
	if v.HasTypeChoices && !slices.Contains(Types, typ) {
		return fmt.Errorf("selected type must be one of %v", Types)
	}
	return nil
}

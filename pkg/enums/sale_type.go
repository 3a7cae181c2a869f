package enums

import "fmt"

// SaleType distinguishes daily entries from weekly rollup entries.
type SaleType string

const (
	SaleTypeDaily  SaleType = "daily"
	SaleTypeWeekly SaleType = "weekly"
)

var validSaleTypes = []SaleType{
	SaleTypeDaily,
	SaleTypeWeekly,
}

// String implements fmt.Stringer.
func (s SaleType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleType.
func (s SaleType) IsValid() bool {
	for _, candidate := range validSaleTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleType converts raw input into a SaleType.
func ParseSaleType(value string) (SaleType, error) {
	for _, candidate := range validSaleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale type %q", value)
}

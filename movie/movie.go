package movie

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Delimiter separates fields when a movie is stored as a line of text
const Delimiter = ":"

var (
	// TaxRate is applied to Price by Tax()
	TaxRate = decimal.RequireFromString("0.13")

	ErrDelimiter     = errors.New("field contains delimiter or newline")
	ErrNegativePrice = errors.New("price is negative")
	ErrEmptyCode     = errors.New("code is empty")
)

// Movie is a single entry in a movie list
type Movie struct {
	// opaque identifier, used as a key by update / delete
	Code     string
	Name     string
	Category string
	Price    decimal.Decimal
}

// New creates a movie. No validation is done, see Validate()
func New(code, name, category string, price decimal.Decimal) *Movie {
	return &Movie{
		Code:     code,
		Name:     name,
		Category: category,
		Price:    price,
	}
}

// Tax returns tax amount for the price
func (m *Movie) Tax() decimal.Decimal {
	return m.Price.Mul(TaxRate)
}

// FinalPrice returns price with tax
func (m *Movie) FinalPrice() decimal.Decimal {
	return m.Price.Add(m.Tax())
}

func validateField(name, v string) error {
	if strings.Contains(v, Delimiter) || strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("%s '%s': %w", name, v, ErrDelimiter)
	}
	return nil
}

// Validate returns an error if m can't be stored unambiguously
func (m *Movie) Validate() error {
	if m.Code == "" {
		return ErrEmptyCode
	}
	if err := validateField("code", m.Code); err != nil {
		return err
	}
	if err := validateField("name", m.Name); err != nil {
		return err
	}
	if err := validateField("category", m.Category); err != nil {
		return err
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("price %s: %w", m.Price, ErrNegativePrice)
	}
	return nil
}

// Equal returns true if all fields are equal. Prices are compared
// numerically so 100 and 100.0 are equal
func (m *Movie) Equal(o *Movie) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Code == o.Code &&
		m.Name == o.Name &&
		m.Category == o.Category &&
		m.Price.Equal(o.Price)
}

func (m *Movie) String() string {
	return fmt.Sprintf("%s %s (%s) %s", m.Code, m.Name, m.Category, m.Price)
}

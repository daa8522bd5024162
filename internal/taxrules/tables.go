package taxrules

import (
	"fmt"
	"os"
	"sort"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Bracket is one progressive tax band. UpTo is the inclusive upper bound of
// taxable income the band covers; a nil UpTo marks the unbounded top band.
type Bracket struct {
	UpTo *decimal.Decimal
	Rate decimal.Decimal
}

// Table is the full rule set for one tax year. Tables are immutable after
// construction and identified by Version, so an estimate pinned to a version
// can be reproduced retroactively.
type Table struct {
	Year               int
	Version            string
	StandardDeduction  decimal.Decimal
	SelfEmploymentRate decimal.Decimal
	Brackets           []Bracket
}

// Validate checks bracket ordering and rates.
func (t *Table) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("table for year %d has no version", t.Year)
	}
	if len(t.Brackets) == 0 {
		return fmt.Errorf("table %s has no brackets", t.Version)
	}
	prev := decimal.Zero
	for i, b := range t.Brackets {
		if b.Rate.IsNegative() {
			return fmt.Errorf("table %s: bracket %d has negative rate", t.Version, i)
		}
		if b.UpTo == nil {
			if i != len(t.Brackets)-1 {
				return fmt.Errorf("table %s: only the last bracket may be unbounded", t.Version)
			}
			continue
		}
		if b.UpTo.LessThanOrEqual(prev) {
			return fmt.Errorf("table %s: bracket %d upper bound not increasing", t.Version, i)
		}
		prev = *b.UpTo
	}
	return nil
}

// Registry holds one table per tax year. The registry built at startup is
// never mutated; a rule update builds and swaps in a new registry.
type Registry struct {
	tables map[int]*Table
}

// NewRegistry builds a registry from the given tables.
func NewRegistry(tables ...*Table) (*Registry, error) {
	byYear := make(map[int]*Table, len(tables))
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, ok := byYear[t.Year]; ok {
			return nil, fmt.Errorf("duplicate table for year %d", t.Year)
		}
		byYear[t.Year] = t
	}
	return &Registry{tables: byYear}, nil
}

// Table returns the bracket table for the given year, or
// apperrors.ErrUnsupportedTaxYear when none is registered. The engine never
// guesses a nearest table.
func (r *Registry) Table(year int) (*Table, error) {
	table, ok := r.tables[year]
	if !ok {
		return nil, fmt.Errorf("no bracket table for year %d: %w", year, apperrors.ErrUnsupportedTaxYear)
	}
	return table, nil
}

// Years lists the registered tax years in ascending order.
func (r *Registry) Years() []int {
	years := make([]int, 0, len(r.tables))
	for y := range r.tables {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// yamlTableFile mirrors the on-disk YAML shape. Monetary values are strings
// so they parse through decimal.NewFromString instead of binary floats.
type yamlTableFile struct {
	Tables []struct {
		Year               int    `yaml:"year"`
		Version            string `yaml:"version"`
		StandardDeduction  string `yaml:"standardDeduction"`
		SelfEmploymentRate string `yaml:"selfEmploymentRate"`
		Brackets           []struct {
			UpTo string `yaml:"upTo"` // empty = unbounded top band
			Rate string `yaml:"rate"`
		} `yaml:"brackets"`
	} `yaml:"tables"`
}

// LoadRegistry reads bracket tables from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax tables %s: %w", path, err)
	}
	var file yamlTableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tax tables %s: %w", path, err)
	}

	tables := make([]*Table, 0, len(file.Tables))
	for _, ft := range file.Tables {
		table := &Table{Year: ft.Year, Version: ft.Version}
		table.StandardDeduction, err = parseAmount(ft.StandardDeduction)
		if err != nil {
			return nil, fmt.Errorf("table %s: standardDeduction: %w", ft.Version, err)
		}
		table.SelfEmploymentRate, err = parseAmount(ft.SelfEmploymentRate)
		if err != nil {
			return nil, fmt.Errorf("table %s: selfEmploymentRate: %w", ft.Version, err)
		}
		for i, fb := range ft.Brackets {
			bracket := Bracket{}
			if fb.UpTo != "" {
				upTo, err := decimal.NewFromString(fb.UpTo)
				if err != nil {
					return nil, fmt.Errorf("table %s: bracket %d upTo: %w", ft.Version, i, err)
				}
				bracket.UpTo = &upTo
			}
			bracket.Rate, err = decimal.NewFromString(fb.Rate)
			if err != nil {
				return nil, fmt.Errorf("table %s: bracket %d rate: %w", ft.Version, i, err)
			}
			table.Brackets = append(table.Brackets, bracket)
		}
		tables = append(tables, table)
	}
	return NewRegistry(tables...)
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// DefaultRegistry returns the built-in US federal single-filer style tables.
func DefaultRegistry() *Registry {
	registry, err := NewRegistry(defaultTable2024(), defaultTable2025())
	if err != nil {
		// The built-in tables are validated by tests; this is unreachable.
		panic(err)
	}
	return registry
}

func defaultTable2024() *Table {
	return &Table{
		Year:               2024,
		Version:            "2024.1",
		StandardDeduction:  decimal.Zero,
		SelfEmploymentRate: decimal.RequireFromString("0.153"),
		Brackets:           bracketsFromStrings("0.10", "11600", "0.12", "47150", "0.22", "100525", "0.24", "191950", "0.32", "243725", "0.35", "609350", "0.37", ""),
	}
}

func defaultTable2025() *Table {
	return &Table{
		Year:               2025,
		Version:            "2025.1",
		StandardDeduction:  decimal.Zero,
		SelfEmploymentRate: decimal.RequireFromString("0.153"),
		Brackets:           bracketsFromStrings("0.10", "11925", "0.12", "48475", "0.22", "103350", "0.24", "197300", "0.32", "250525", "0.35", "626350", "0.37", ""),
	}
}

// bracketsFromStrings takes alternating rate/upper-bound pairs; an empty
// bound marks the top band.
func bracketsFromStrings(pairs ...string) []Bracket {
	brackets := make([]Bracket, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		bracket := Bracket{Rate: decimal.RequireFromString(pairs[i])}
		if pairs[i+1] != "" {
			upTo := decimal.RequireFromString(pairs[i+1])
			bracket.UpTo = &upTo
		}
		brackets = append(brackets, bracket)
	}
	return brackets
}

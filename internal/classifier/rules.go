package classifier

import (
	"fmt"
	"os"
	"strings"

	"github.com/gigworks/gigtax/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Rule maps a merchant/keyword pattern to a category. Patterns are matched
// case-insensitively as substrings of the transaction description.
type Rule struct {
	Pattern  string          `yaml:"pattern"`
	Category domain.Category `yaml:"category"`
}

// RuleTable is the deterministic first stage of classification. Tables are
// immutable once built; updates swap in a whole new table so concurrent
// readers never observe a half-updated one.
type RuleTable struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Match returns the category of the most specific (longest) matching pattern.
// A match is authoritative: the caller assigns it with confidence 1.0.
func (t *RuleTable) Match(description string) (domain.Category, bool) {
	desc := strings.ToLower(description)
	var (
		best    domain.Category
		bestLen int
		found   bool
	)
	for _, rule := range t.Rules {
		pattern := strings.ToLower(rule.Pattern)
		if pattern == "" || !strings.Contains(desc, pattern) {
			continue
		}
		if len(pattern) > bestLen {
			best = rule.Category
			bestLen = len(pattern)
			found = true
		}
	}
	return best, found
}

// LoadRuleTable reads a rule table from a YAML file and validates it.
func LoadRuleTable(path string) (*RuleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table %s: %w", path, err)
	}
	var table RuleTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rule table %s: %w", path, err)
	}
	if table.Version == "" {
		return nil, fmt.Errorf("rule table %s has no version", path)
	}
	for i, rule := range table.Rules {
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule table %s: rule %d has an empty pattern", path, i)
		}
		if !domain.IsValidExpenseCategory(rule.Category) {
			return nil, fmt.Errorf("rule table %s: rule %d has unknown category %q", path, i, rule.Category)
		}
	}
	return &table, nil
}

// DefaultRuleTable returns the built-in merchant/keyword table used when no
// external table is configured.
func DefaultRuleTable() *RuleTable {
	return &RuleTable{
		Version: "builtin.1",
		Rules: []Rule{
			// Vehicle: fuel, maintenance and road costs for drivers.
			{Pattern: "shell", Category: domain.CategoryVehicle},
			{Pattern: "chevron", Category: domain.CategoryVehicle},
			{Pattern: "exxon", Category: domain.CategoryVehicle},
			{Pattern: "texaco", Category: domain.CategoryVehicle},
			{Pattern: "gas station", Category: domain.CategoryVehicle},
			{Pattern: "jiffy lube", Category: domain.CategoryVehicle},
			{Pattern: "oil change", Category: domain.CategoryVehicle},
			{Pattern: "autozone", Category: domain.CategoryVehicle},
			{Pattern: "car wash", Category: domain.CategoryVehicle},
			{Pattern: "parking", Category: domain.CategoryVehicle},
			{Pattern: "toll", Category: domain.CategoryVehicle},

			// Supplies: consumables and small equipment.
			{Pattern: "office depot", Category: domain.CategorySupplies},
			{Pattern: "staples", Category: domain.CategorySupplies},
			{Pattern: "uline", Category: domain.CategorySupplies},
			{Pattern: "phone mount", Category: domain.CategorySupplies},
			{Pattern: "delivery bag", Category: domain.CategorySupplies},

			// Insurance premiums.
			{Pattern: "geico", Category: domain.CategoryInsurance},
			{Pattern: "progressive insurance", Category: domain.CategoryInsurance},
			{Pattern: "state farm", Category: domain.CategoryInsurance},
			{Pattern: "allstate", Category: domain.CategoryInsurance},

			// Platform and payment fees.
			{Pattern: "service fee", Category: domain.CategoryFees},
			{Pattern: "platform fee", Category: domain.CategoryFees},
			{Pattern: "upwork fee", Category: domain.CategoryFees},
			{Pattern: "fiverr fee", Category: domain.CategoryFees},
			{Pattern: "stripe", Category: domain.CategoryFees},

			// Known personal spend surfaces as non-deductible, not Unclassified.
			{Pattern: "netflix", Category: domain.CategoryOtherNonDeductible},
			{Pattern: "spotify", Category: domain.CategoryOtherNonDeductible},
			{Pattern: "amazon prime", Category: domain.CategoryOtherNonDeductible},
		},
	}
}

package classifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gigworks/gigtax/internal/classifier"
	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleTable_Match_CaseInsensitive(t *testing.T) {
	table := classifier.DefaultRuleTable()

	category, ok := table.Match("SHELL OIL 5742 MAIN ST")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryVehicle, category)
}

func TestRuleTable_Match_LongestPatternWins(t *testing.T) {
	table := &classifier.RuleTable{
		Version: "test.1",
		Rules: []classifier.Rule{
			{Pattern: "prime", Category: domain.CategoryFees},
			{Pattern: "amazon prime", Category: domain.CategoryOtherNonDeductible},
		},
	}

	category, ok := table.Match("AMAZON PRIME MEMBERSHIP")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryOtherNonDeductible, category)
}

func TestRuleTable_Match_NoMatch(t *testing.T) {
	table := classifier.DefaultRuleTable()

	_, ok := table.Match("completely unknown merchant")
	assert.False(t, ok)
}

func TestLoadRuleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: custom.1
rules:
  - pattern: "costco gas"
    category: VEHICLE
  - pattern: "zoom"
    category: FEES
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := classifier.LoadRuleTable(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.1", table.Version)
	require.Len(t, table.Rules, 2)

	category, ok := table.Match("COSTCO GAS #123")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryVehicle, category)
}

func TestLoadRuleTable_RejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: bad.1
rules:
  - pattern: "something"
    category: NOT_A_CATEGORY
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := classifier.LoadRuleTable(path)
	assert.Error(t, err)
}

func TestLoadRuleTable_RejectsEmptyPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: bad.2
rules:
  - pattern: ""
    category: VEHICLE
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := classifier.LoadRuleTable(path)
	assert.Error(t, err)
}

func TestLoadRuleTable_RequiresVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - pattern: "shell"
    category: VEHICLE
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := classifier.LoadRuleTable(path)
	assert.Error(t, err)
}

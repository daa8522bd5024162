package domain

// Category is a tax classification bucket for a transaction. Categories are
// immutable reference data, not user-editable at runtime.
type Category string

const (
	CategoryVehicle            Category = "VEHICLE"
	CategorySupplies           Category = "SUPPLIES"
	CategoryMeals              Category = "MEALS"
	CategoryInsurance          Category = "INSURANCE"
	CategoryFees               Category = "FEES"
	CategoryOtherNonDeductible Category = "OTHER_NON_DEDUCTIBLE"

	// CategoryUnclassified is the sentinel for expenses no stage could place
	// with enough confidence. Unclassified amounts never count as deductions.
	CategoryUnclassified Category = "UNCLASSIFIED"

	// CategoryEarnings is the implicit pseudo-category for positive amounts.
	// Earnings never run through expense classification.
	CategoryEarnings Category = "EARNINGS"
)

// ExpenseCategories lists the categories the classifier may assign to an
// expense, in stable order.
var ExpenseCategories = []Category{
	CategoryVehicle,
	CategorySupplies,
	CategoryMeals,
	CategoryInsurance,
	CategoryFees,
	CategoryOtherNonDeductible,
	CategoryUnclassified,
}

// IsValidExpenseCategory reports whether c is an assignable expense category.
// Used to validate manual overrides coming from the API collaborator.
func IsValidExpenseCategory(c Category) bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Deductible reports whether expenses in this category reduce taxable income.
func (c Category) Deductible() bool {
	switch c {
	case CategoryVehicle, CategorySupplies, CategoryMeals, CategoryInsurance, CategoryFees:
		return true
	default:
		return false
	}
}

package reconcile

import "github.com/diewo77/kunder-tools/internal/models"

// InferCategory derives the category from the inspection fields. Records without
// any signal keep their stored category, or electrical when none is stored.
func InferCategory(c models.Customer) models.Category {
	hasElectrical := !blank(c.ElectricalType) ||
		!blank(c.LastElectricalInspection) ||
		!blank(c.NextElectricalInspection)
	hasFire := !blank(c.FireSystem) ||
		!blank(c.FireOperationType) ||
		!blank(c.LastFireInspection) ||
		!blank(c.NextFireInspection)

	switch {
	case hasElectrical && hasFire:
		return models.CategoryBoth
	case hasFire:
		return models.CategoryFireAlarm
	case hasElectrical:
		return models.CategoryElectrical
	case c.Category != "":
		return c.Category
	}
	return models.CategoryElectrical
}

// CategoryDiff returns the category update for c, empty when it already matches.
func CategoryDiff(c models.Customer) Diff {
	want := InferCategory(c)
	if want == c.Category {
		return Diff{}
	}
	return Diff{models.ColCategory: string(want)}
}

package reconcile

import (
	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/reference"
)

// MatchByName returns the first reference row whose normalized name equals c's.
func MatchByName(c models.Customer, rows []reference.Row) (reference.Row, bool) {
	key := Normalize(c.Name)
	for _, row := range rows {
		if Normalize(row.Get(reference.FieldName)) == key {
			return row, true
		}
	}
	return nil, false
}

// ReferenceIndex is a name-keyed view of reference rows for repeated matching.
type ReferenceIndex map[string]reference.Row

// IndexByName indexes rows by normalized name; the first row for a name wins.
func IndexByName(rows []reference.Row) ReferenceIndex {
	ix := make(ReferenceIndex, len(rows))
	for _, row := range rows {
		k := Normalize(row.Get(reference.FieldName))
		if _, seen := ix[k]; !seen {
			ix[k] = row
		}
	}
	return ix
}

// Match returns the row indexed under c's normalized name.
func (ix ReferenceIndex) Match(c models.Customer) (reference.Row, bool) {
	row, ok := ix[Normalize(c.Name)]
	return row, ok
}

type fillTarget struct {
	column string
	field  string
	date   bool
	get    func(*models.Customer) *string
}

var fillTargets = []fillTarget{
	{models.ColAddress, reference.FieldAddress, false, func(c *models.Customer) *string { return &c.Address }},
	{models.ColPostalCode, reference.FieldPostalCode, false, func(c *models.Customer) *string { return &c.PostalCode }},
	{models.ColCity, reference.FieldCity, false, func(c *models.Customer) *string { return &c.City }},
	{models.ColElectricalType, reference.FieldElectricalType, false, func(c *models.Customer) *string { return &c.ElectricalType }},
	{models.ColFireSystem, reference.FieldFireSystem, false, func(c *models.Customer) *string { return &c.FireSystem }},
	{models.ColFireOperationType, reference.FieldFireOperationType, false, func(c *models.Customer) *string { return &c.FireOperationType }},
	{models.ColLastElectricalInspection, reference.FieldLastElectricalInspection, true, func(c *models.Customer) *string { return &c.LastElectricalInspection }},
	{models.ColNextElectricalInspection, reference.FieldNextElectricalInspection, true, func(c *models.Customer) *string { return &c.NextElectricalInspection }},
	{models.ColLastFireInspection, reference.FieldLastFireInspection, true, func(c *models.Customer) *string { return &c.LastFireInspection }},
	{models.ColNextFireInspection, reference.FieldNextFireInspection, true, func(c *models.Customer) *string { return &c.NextFireInspection }},
}

// FillFromReference fills fields that are empty on c from row, then re-infers the
// category on the filled record. Populated fields are never overwritten; reference
// dates that cannot be parsed are left out.
func FillFromReference(c models.Customer, row reference.Row) Diff {
	filled := c
	d := Diff{}
	for _, t := range fillTargets {
		dst := t.get(&filled)
		if !blank(*dst) {
			continue
		}
		v := row.Get(t.field)
		if v == "" {
			continue
		}
		if t.date {
			norm, err := NormalizeDate(v)
			if err != nil {
				continue
			}
			v = norm
		}
		*dst = v
		d[t.column] = v
	}
	d.Merge(CategoryDiff(filled))
	return d
}

package reconcile

import (
	"cmp"
	"slices"

	"github.com/diewo77/kunder-tools/internal/models"
)

// DuplicateGroup is a set of records sharing a DuplicateKey.
type DuplicateGroup struct {
	Key string
	// Canonical is the record with the lowest id; it survives.
	Canonical models.Customer
	// Duplicates are the remaining records, ordered by id; they are deleted.
	Duplicates []models.Customer
}

// IDs returns the ids of the duplicates to delete.
func (g DuplicateGroup) IDs() []uint {
	ids := make([]uint, len(g.Duplicates))
	for i, d := range g.Duplicates {
		ids[i] = d.ID
	}
	return ids
}

// GroupByKey folds records into a key -> record ids mapping. Ids are sorted.
func GroupByKey(records []models.Customer) map[string][]uint {
	groups := make(map[string][]uint)
	for _, r := range records {
		k := DuplicateKey(r)
		groups[k] = append(groups[k], r.ID)
	}
	for _, ids := range groups {
		slices.Sort(ids)
	}
	return groups
}

// FindDuplicates returns every group with more than one record. Output is ordered by
// canonical id and does not depend on input order. Empty names and addresses take
// part in matching like any other value.
func FindDuplicates(records []models.Customer) []DuplicateGroup {
	byKey := make(map[string][]models.Customer)
	for _, r := range records {
		k := DuplicateKey(r)
		byKey[k] = append(byKey[k], r)
	}

	var groups []DuplicateGroup
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		sorted := slices.Clone(members)
		slices.SortFunc(sorted, func(a, b models.Customer) int { return cmp.Compare(a.ID, b.ID) })
		groups = append(groups, DuplicateGroup{
			Key:        key,
			Canonical:  sorted[0],
			Duplicates: sorted[1:],
		})
	}
	slices.SortFunc(groups, func(a, b DuplicateGroup) int {
		return cmp.Compare(a.Canonical.ID, b.Canonical.ID)
	})
	return groups
}

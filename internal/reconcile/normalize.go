// Package reconcile computes corrected field values for customer records without
// doing any I/O. Callers load records, ask reconcile for a Diff and write it back.
package reconcile

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/diewo77/kunder-tools/internal/models"
)

// Normalize trims, lowercases and collapses whitespace runs to a single space.
// Input is NFC-composed first so "å" typed two ways compares equal.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Norwegian).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// DuplicateKey is the grouping key for duplicate detection.
func DuplicateKey(c models.Customer) string {
	return Normalize(c.Name) + "|" + Normalize(c.Address)
}

// Diff maps column name to its new value. A nil value writes NULL.
type Diff map[string]any

// Empty reports whether the diff changes nothing.
func (d Diff) Empty() bool { return len(d) == 0 }

// Columns returns the changed column names in sorted order.
func (d Diff) Columns() []string {
	return slices.Sorted(maps.Keys(d))
}

// Merge copies o into d, o winning on conflicts.
func (d Diff) Merge(o Diff) {
	maps.Copy(d, o)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

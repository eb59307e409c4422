package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/kunder-tools/internal/models"
)

// DateLayout is the stored inspection date format.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates that match no accepted layout.
var ErrInvalidDate = errors.New("invalid date")

// inputLayouts are accepted when reading dates from reference files.
var inputLayouts = []string{DateLayout, "02.01.2006", "2.1.2006", "02/01/2006"}

// ParseDate parses s in any accepted layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NormalizeDate rewrites s in DateLayout.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ProjectNextDate adds months calendar months to last. Day-of-month overflow rolls
// into the following month (2024-01-31 + 1 month = 2024-03-02).
func ProjectNextDate(last string, months int) (string, error) {
	t, err := ParseDate(last)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, months, 0).Format(DateLayout), nil
}

// NextDateDiff backfills missing next-inspection dates for the categories c covers.
// Existing next dates are never overwritten. Invalid last dates are reported in err
// while the remaining fields are still returned.
func NextDateDiff(c models.Customer) (Diff, error) {
	d := Diff{}
	var errs []error

	if c.Category.IncludesElectrical() && !blank(c.LastElectricalInspection) && blank(c.NextElectricalInspection) {
		next, err := ProjectNextDate(c.LastElectricalInspection, c.ElectricalInterval())
		if err != nil {
			errs = append(errs, fmt.Errorf("electrical: %w", err))
		} else {
			d[models.ColNextElectricalInspection] = next
		}
	}
	if c.Category.IncludesFire() && !blank(c.LastFireInspection) && blank(c.NextFireInspection) {
		next, err := ProjectNextDate(c.LastFireInspection, c.FireInterval())
		if err != nil {
			errs = append(errs, fmt.Errorf("fire: %w", err))
		} else {
			d[models.ColNextFireInspection] = next
		}
	}
	return d, errors.Join(errs...)
}

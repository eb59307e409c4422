package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kunder-tools/internal/models"
)

func TestProjectNextDate(t *testing.T) {
	tests := []struct {
		last   string
		months int
		want   string
	}{
		{"2024-01-15", 12, "2025-01-15"},
		{"2024-01-15", 36, "2027-01-15"},
		{"2023-03-31", 1, "2023-05-01"},  // April has 30 days
		{"2024-01-31", 1, "2024-03-02"},  // leap February
		{"2023-08-31", 12, "2024-08-31"}, // same month, no rollover
		{"15.01.2024", 12, "2025-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			got, err := ProjectNextDate(tt.last, tt.months)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectNextDateInvalid(t *testing.T) {
	_, err := ProjectNextDate("snart", 12)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("5.3.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", got)
}

func TestNextDateDiff(t *testing.T) {
	twelve := 12

	tests := []struct {
		name     string
		customer models.Customer
		want     Diff
		wantErr  bool
	}{
		{
			name:     "fire default interval",
			customer: models.Customer{Category: models.CategoryFireAlarm, LastFireInspection: "2024-01-15"},
			want:     Diff{models.ColNextFireInspection: "2025-01-15"},
		},
		{
			name:     "electrical default interval",
			customer: models.Customer{Category: models.CategoryElectrical, LastElectricalInspection: "2023-06-01"},
			want:     Diff{models.ColNextElectricalInspection: "2026-06-01"},
		},
		{
			name: "both with explicit electrical interval",
			customer: models.Customer{
				Category:                 models.CategoryBoth,
				LastElectricalInspection: "2023-06-01",
				ElectricalIntervalMonths: &twelve,
				LastFireInspection:       "2024-02-01",
			},
			want: Diff{
				models.ColNextElectricalInspection: "2024-06-01",
				models.ColNextFireInspection:       "2025-02-01",
			},
		},
		{
			name:     "existing next date kept",
			customer: models.Customer{Category: models.CategoryFireAlarm, LastFireInspection: "2024-01-15", NextFireInspection: "2024-06-01"},
			want:     Diff{},
		},
		{
			name:     "category without fire",
			customer: models.Customer{Category: models.CategoryElectrical, LastFireInspection: "2024-01-15"},
			want:     Diff{},
		},
		{
			name:     "no last date",
			customer: models.Customer{Category: models.CategoryBoth},
			want:     Diff{},
		},
		{
			name: "invalid fire date keeps electrical",
			customer: models.Customer{
				Category:                 models.CategoryBoth,
				LastElectricalInspection: "2023-06-01",
				LastFireInspection:       "ukjent",
			},
			want:    Diff{models.ColNextElectricalInspection: "2026-06-01"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDateDiff(tt.customer)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

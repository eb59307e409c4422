package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diewo77/kunder-tools/internal/models"
)

func located(address string) models.Customer {
	lat, lng := 68.17, 13.57
	return models.Customer{Address: address, Latitude: &lat, Longitude: &lng}
}

func qualityPtr(q models.GeocodeQuality) *models.GeocodeQuality { return &q }

func TestClassifyQuality(t *testing.T) {
	tests := []struct {
		name     string
		customer models.Customer
		want     models.GeocodeQuality
	}{
		{"no coordinates with street", models.Customer{Address: "Storgata 1"}, QualityNull},
		{"no coordinates with parcel", models.Customer{Address: "201/856"}, QualityNull},
		{"no coordinates empty", models.Customer{}, QualityNull},
		{"empty address", located(""), models.QualityArea},
		{"whitespace address", located("   "), models.QualityArea},
		{"place name", located("Valberg"), models.QualityArea},
		{"street number", located("Storgata 12B"), models.QualityExact},
		{"parcel notation", located("201/856"), models.QualityExact},
		{"slash without digit", located("Gnr/Bnr ukjent"), models.QualityExact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyQuality(tt.customer))
		})
	}
}

func TestClassifierWithoutDigitHeuristic(t *testing.T) {
	q := QualityClassifier{AreaWithoutDigits: false}
	assert.Equal(t, models.QualityExact, q.Classify(located("Valberg")))
	assert.Equal(t, models.QualityArea, q.Classify(located("")))
}

func TestQualityDiff(t *testing.T) {
	c := located("Storgata 1")
	assert.Equal(t, Diff{models.ColGeocodeQuality: "exact"}, DefaultClassifier.QualityDiff(c))

	c.GeocodeQuality = qualityPtr(models.QualityExact)
	assert.True(t, DefaultClassifier.QualityDiff(c).Empty())

	stale := models.Customer{Address: "Storgata 1", GeocodeQuality: qualityPtr(models.QualityArea)}
	assert.Equal(t, Diff{models.ColGeocodeQuality: nil}, DefaultClassifier.QualityDiff(stale))

	assert.True(t, DefaultClassifier.QualityDiff(models.Customer{}).Empty())
}

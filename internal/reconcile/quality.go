package reconcile

import (
	"strings"
	"unicode"

	"github.com/diewo77/kunder-tools/internal/models"
)

// QualityNull is the absence of a quality tag.
const QualityNull models.GeocodeQuality = ""

// QualityClassifier decides how precise a record's coordinates are from its address.
type QualityClassifier struct {
	// AreaWithoutDigits treats addresses without any digit as place names geocoded to
	// an area centroid. It mirrors how the address registry resolves such queries.
	AreaWithoutDigits bool
}

// DefaultClassifier is the classifier used by ClassifyQuality.
var DefaultClassifier = QualityClassifier{AreaWithoutDigits: true}

// ClassifyQuality classifies c with DefaultClassifier.
func ClassifyQuality(c models.Customer) models.GeocodeQuality {
	return DefaultClassifier.Classify(c)
}

// Classify returns exact, area or QualityNull for c.
// Parcel notation ("gnr/bnr") counts as exact even without a digit.
func (q QualityClassifier) Classify(c models.Customer) models.GeocodeQuality {
	if !c.HasCoordinates() {
		return QualityNull
	}
	addr := strings.TrimSpace(c.Address)
	if addr == "" {
		return models.QualityArea
	}
	if strings.ContainsRune(addr, '/') {
		return models.QualityExact
	}
	if q.AreaWithoutDigits && !strings.ContainsFunc(addr, unicode.IsDigit) {
		return models.QualityArea
	}
	return models.QualityExact
}

// QualityDiff returns the geocode_quality update for c. A record that lost its
// coordinates gets its tag cleared.
func (q QualityClassifier) QualityDiff(c models.Customer) Diff {
	want := q.Classify(c)
	var have models.GeocodeQuality
	if c.GeocodeQuality != nil {
		have = *c.GeocodeQuality
	}
	if want == have {
		return Diff{}
	}
	if want == QualityNull {
		return Diff{models.ColGeocodeQuality: nil}
	}
	return Diff{models.ColGeocodeQuality: string(want)}
}

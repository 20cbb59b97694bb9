package matching

import (
	"math"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/similarity"
)

// Feature weights. They sum to 1.
const (
	WeightCategory    = 0.30
	WeightSubcategory = 0.20
	WeightLocation    = 0.20
	WeightDate        = 0.10
	WeightDescription = 0.20
)

// DateWindowDays is the largest date difference that still earns date credit.
const DateWindowDays = 7.0

const totalWeight = WeightCategory + WeightSubcategory + WeightLocation + WeightDate + WeightDescription

// Breakdown holds the weighted contribution of each feature to a score.
type Breakdown struct {
	Category    float64 `json:"category"`
	Subcategory float64 `json:"subcategory"`
	Location    float64 `json:"location"`
	Date        float64 `json:"date"`
	Description float64 `json:"description"`
}

// Total is the normalized score.
func (b Breakdown) Total() float64 {
	sum := b.Category + b.Subcategory + b.Location + b.Date + b.Description
	return clamp(sum / totalWeight)
}

// Score returns the match score of a lost and a found item, in [0, 1].
func Score(lost, found model.Item) float64 {
	return Explain(lost, found).Total()
}

// Explain returns the per-feature contributions behind Score.
func Explain(lost, found model.Item) Breakdown {
	var b Breakdown

	if lost.Category == found.Category {
		b.Category = WeightCategory
	}

	// Subcategory weight stays in the denominator when either side is blank.
	if lost.Subcategory != "" && found.Subcategory != "" && lost.Subcategory == found.Subcategory {
		b.Subcategory = WeightSubcategory
	}

	if lost.Location == found.Location {
		b.Location = WeightLocation
	}

	b.Date = WeightDate * dateProximity(lost, found)

	b.Description = WeightDescription * similarity.Similarity(lost.Description, found.Description)

	return b
}

func dateProximity(a, b model.Item) float64 {
	days := math.Abs(a.OccurredOn.Sub(b.OccurredOn).Hours()) / 24
	if days > DateWindowDays {
		return 0
	}
	return math.Max(0, 1-days/DateWindowDays)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

package matching

import (
	"sort"

	"github.com/erazemk/najdeno/internal/model"
)

// DefaultThreshold is the minimum score for a candidate to count as a match.
const DefaultThreshold = 0.5

// Candidate is a scored (lost, found) pair produced by a matching run.
type Candidate struct {
	Lost      model.Item `json:"lost"`
	Found     model.Item `json:"found"`
	Score     float64    `json:"score"`
	Breakdown Breakdown  `json:"breakdown"`
}

// PairKey returns the dedup key of the pair.
func (c Candidate) PairKey() string {
	return model.PairKey(c.Lost.ID, c.Found.ID)
}

// ScorePercentage is the score scaled to 0-100 for display.
func (c Candidate) ScorePercentage() int {
	return int(c.Score*100 + 0.5)
}

// counterpart returns the candidate-pool side of the pair relative to item.
func (c Candidate) counterpart(item model.Item) model.Item {
	if c.Lost.ID == item.ID {
		return c.Found
	}
	return c.Lost
}

// FindMatches scores every eligible item in pool against item and returns the
// candidates scoring at least threshold, best first. Equal scores are ordered
// by candidate id. Pool items that are not matchable against item are ignored;
// pool items missing comparison fields are skipped and reported as
// *InputError values. item itself must be valid; see Item.MissingField.
func FindMatches(item model.Item, pool []model.Item, threshold float64) ([]Candidate, []*InputError) {
	opposite, ok := model.OppositeStatus(item.Status)
	if !ok {
		return nil, nil
	}

	var (
		matches []Candidate
		skipped []*InputError
	)
	for _, other := range pool {
		if other.ID == item.ID || other.Status != opposite || !other.Matchable() {
			continue
		}
		if field := other.MissingField(); field != "" {
			skipped = append(skipped, &InputError{ItemID: other.ID, Field: field})
			continue
		}

		c := Candidate{Lost: item, Found: other}
		if item.Status == model.ItemStatusFound {
			c = Candidate{Lost: other, Found: item}
		}
		c.Breakdown = Explain(c.Lost, c.Found)
		c.Score = c.Breakdown.Total()
		if c.Score < threshold {
			continue
		}
		matches = append(matches, c)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].counterpart(item).ID < matches[j].counterpart(item).ID
	})

	return matches, skipped
}

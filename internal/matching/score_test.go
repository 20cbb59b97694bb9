package matching

import (
	"math"
	"testing"

	"github.com/erazemk/najdeno/internal/model"
)

func TestScoreReferenceExample(t *testing.T) {
	got := Score(lostPhone(), foundPhone())

	want := 0.30 + 0.20 + 0.20 + 0.10*(1-2.0/7) + 0.20*(1-5.0/22)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
	if math.Abs(got-0.93) > 0.01 {
		t.Errorf("Score = %v, want about 0.93", got)
	}
}

func TestScoreSymmetric(t *testing.T) {
	a, b := lostPhone(), foundPhone()
	if Score(a, b) != Score(b, a) {
		t.Errorf("Score not symmetric: %v vs %v", Score(a, b), Score(b, a))
	}
}

func TestScoreFeatures(t *testing.T) {
	base := lostPhone()

	tests := []struct {
		name   string
		mutate func(found *model.Item)
		want   Breakdown
	}{
		{
			name:   "identical",
			mutate: func(f *model.Item) {},
			want:   Breakdown{Category: 0.3, Subcategory: 0.2, Location: 0.2, Date: 0.1, Description: 0.2},
		},
		{
			name:   "different category",
			mutate: func(f *model.Item) { f.Category = "Clothing" },
			want:   Breakdown{Subcategory: 0.2, Location: 0.2, Date: 0.1, Description: 0.2},
		},
		{
			name:   "subcategory missing on one side",
			mutate: func(f *model.Item) { f.Subcategory = "" },
			want:   Breakdown{Category: 0.3, Location: 0.2, Date: 0.1, Description: 0.2},
		},
		{
			name:   "location differs in case",
			mutate: func(f *model.Item) { f.Location = "Library" },
			want:   Breakdown{Category: 0.3, Subcategory: 0.2, Date: 0.1, Description: 0.2},
		},
		{
			name:   "exactly seven days apart",
			mutate: func(f *model.Item) { f.OccurredOn = day("2024-01-17") },
			want:   Breakdown{Category: 0.3, Subcategory: 0.2, Location: 0.2, Description: 0.2},
		},
		{
			name:   "earlier date uses absolute difference",
			mutate: func(f *model.Item) { f.OccurredOn = day("2024-01-03") },
			want:   Breakdown{Category: 0.3, Subcategory: 0.2, Location: 0.2, Description: 0.2},
		},
		{
			name:   "far apart",
			mutate: func(f *model.Item) { f.OccurredOn = day("2024-03-01") },
			want:   Breakdown{Category: 0.3, Subcategory: 0.2, Location: 0.2, Description: 0.2},
		},
	}

	for _, tt := range tests {
		found := base
		found.ID = 99
		found.Status = model.ItemStatusFound
		tt.mutate(&found)

		got := Explain(base, found)
		if !closeBreakdown(got, tt.want) {
			t.Errorf("%s: Explain = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestScoreBothSubcategoriesEmpty(t *testing.T) {
	lost, found := lostPhone(), foundPhone()
	lost.Subcategory, found.Subcategory = "", ""
	if got := Explain(lost, found).Subcategory; got != 0 {
		t.Errorf("expected no subcategory credit when both are empty, got %v", got)
	}
	if Score(lost, found) >= Score(lostPhone(), foundPhone()) {
		t.Error("expected lower score without subcategories")
	}
}

func TestScoreBounds(t *testing.T) {
	lost := lostPhone()
	items := []model.Item{
		foundPhone(),
		{Category: "x", Description: "completely different", OccurredOn: day("1999-01-01")},
		{},
		lost,
	}
	for _, other := range items {
		s := Score(lost, other)
		if s < 0 || s > 1 {
			t.Errorf("Score out of range: %v", s)
		}
	}
}

func TestScoreDescriptionIsRaw(t *testing.T) {
	lost, found := lostPhone(), lostPhone()
	found.Description = "  " + lost.Description + "  "

	// 4 padding runes over a 26-rune description.
	want := WeightDescription * (1 - 4.0/26)
	if got := Explain(lost, found).Description; math.Abs(got-want) > 1e-9 {
		t.Errorf("Description = %v, want %v", got, want)
	}
}

func closeBreakdown(a, b Breakdown) bool {
	const eps = 1e-9
	return math.Abs(a.Category-b.Category) < eps &&
		math.Abs(a.Subcategory-b.Subcategory) < eps &&
		math.Abs(a.Location-b.Location) < eps &&
		math.Abs(a.Date-b.Date) < eps &&
		math.Abs(a.Description-b.Description) < eps
}

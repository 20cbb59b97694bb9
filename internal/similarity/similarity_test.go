package similarity

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"black iphone with case", "black iphone case", 5},
		{"Wallet", "wallet", 0},
		{"čevlji", "cevlji", 1},
	}

	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "blue umbrella", "Ključi s obeskom"} {
		if got := Similarity(s, s); got != 1 {
			t.Errorf("Similarity(%q, %q) = %v, want 1", s, s, got)
		}
	}
}

func TestSimilarityCaseInsensitive(t *testing.T) {
	if got := Similarity("BLACK Backpack", "black backpack"); got != 1 {
		t.Errorf("expected case-insensitive match, got %v", got)
	}
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"", "x"},
		{"red scarf", "scarf red"},
		{"black iphone with case", "black iphone case"},
		{"keys", "a set of car keys on a ring"},
		{"abc", "xyz"},
	}

	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestSimilarityKnownValue(t *testing.T) {
	got := Similarity("black iphone with case", "black iphone case")
	want := 1 - 5.0/22.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}

	if got := Similarity("abc", "xyz"); got != 0 {
		t.Errorf("Similarity of disjoint strings = %v, want 0", got)
	}
}

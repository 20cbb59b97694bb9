package matching

import (
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func TestFindMatchesThresholdAndOrder(t *testing.T) {
	lost := lostPhone()

	strong := foundPhone()
	strong.ID = 30

	// Same score as strong, lower id: must come first.
	tie := foundPhone()
	tie.ID = 25

	weak := foundPhone()
	weak.ID = 21
	weak.Category = "Clothing"
	weak.Subcategory = "Jackets"
	weak.Location = "gym"
	weak.OccurredOn = day("2024-02-20")

	medium := foundPhone()
	medium.ID = 40
	medium.Location = "cafeteria"

	matches, skipped := FindMatches(lost, []model.Item{strong, weak, medium, tie}, DefaultThreshold)
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped candidates, got %v", skipped)
	}

	wantIDs := []int64{25, 30, 40}
	if len(matches) != len(wantIDs) {
		t.Fatalf("expected %d matches, got %d", len(wantIDs), len(matches))
	}
	for i, id := range wantIDs {
		if matches[i].Found.ID != id {
			t.Errorf("match %d: expected found item %d, got %d", i, id, matches[i].Found.ID)
		}
		if matches[i].Lost.ID != lost.ID {
			t.Errorf("match %d: expected lost item %d, got %d", i, lost.ID, matches[i].Lost.ID)
		}
		if matches[i].Score < DefaultThreshold {
			t.Errorf("match %d below threshold: %v", i, matches[i].Score)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted by score at %d", i)
		}
	}
}

func TestFindMatchesFromFoundSide(t *testing.T) {
	found := foundPhone()
	lost := lostPhone()

	matches, _ := FindMatches(found, []model.Item{lost}, DefaultThreshold)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Lost.ID != lost.ID || matches[0].Found.ID != found.ID {
		t.Errorf("pair oriented wrong: lost=%d found=%d", matches[0].Lost.ID, matches[0].Found.ID)
	}
	if matches[0].PairKey() != model.PairKey(lost.ID, found.ID) {
		t.Errorf("unexpected pair key %q", matches[0].PairKey())
	}
	if matches[0].ScorePercentage() != 93 {
		t.Errorf("expected 93%%, got %d", matches[0].ScorePercentage())
	}
}

func TestFindMatchesIgnoresIneligible(t *testing.T) {
	lost := lostPhone()
	now := time.Now()

	unapproved := foundPhone()
	unapproved.ID = 31
	unapproved.Approved = false

	deleted := foundPhone()
	deleted.ID = 32
	deleted.DeletedAt = &now

	sameStatus := lostPhone()
	sameStatus.ID = 33

	returned := foundPhone()
	returned.ID = 34
	returned.Status = model.ItemStatusReturned

	self := lost

	matches, skipped := FindMatches(lost, []model.Item{unapproved, deleted, sameStatus, returned, self}, 0)
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
	if len(skipped) != 0 {
		t.Errorf("expected nothing skipped, got %d", len(skipped))
	}
}

func TestFindMatchesSkipsMalformedCandidates(t *testing.T) {
	lost := lostPhone()

	noDescription := foundPhone()
	noDescription.ID = 41
	noDescription.Description = ""

	noDate := foundPhone()
	noDate.ID = 42
	noDate.OccurredOn = time.Time{}

	good := foundPhone()

	matches, skipped := FindMatches(lost, []model.Item{noDescription, good, noDate}, DefaultThreshold)
	if len(matches) != 1 || matches[0].Found.ID != good.ID {
		t.Fatalf("expected only the well-formed candidate, got %+v", matches)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped candidates, got %d", len(skipped))
	}
	if skipped[0].ItemID != 41 || skipped[0].Field != "description" {
		t.Errorf("unexpected first skip: %+v", skipped[0])
	}
	if skipped[1].ItemID != 42 || skipped[1].Field != "occurred_on" {
		t.Errorf("unexpected second skip: %+v", skipped[1])
	}
}

func TestFindMatchesNonMatchableStatus(t *testing.T) {
	item := lostPhone()
	item.Status = model.ItemStatusRequested

	matches, skipped := FindMatches(item, []model.Item{foundPhone()}, 0)
	if matches != nil || skipped != nil {
		t.Errorf("expected nil results for requested item, got %v %v", matches, skipped)
	}
}

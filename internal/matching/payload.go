package matching

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erazemk/najdeno/internal/model"
)

// Payload is the content of one match notification.
type Payload struct {
	Subject         string     `json:"subject"`
	Recipient       string     `json:"recipient"`
	MatchID         int64      `json:"match_id"`
	Side            model.Side `json:"side"`
	YourItemTitle   string     `json:"your_item_title"`
	ItemTitle       string     `json:"item_title"`
	Category        string     `json:"category"`
	Location        string     `json:"location,omitempty"`
	OccurredOn      time.Time  `json:"occurred_on"`
	Score           float64    `json:"score"`
	ScorePercentage int        `json:"score_percentage"`
	Link            string     `json:"link"`
}

// Body renders the payload as plain text.
func (p Payload) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", p.Recipient)
	if p.Side == model.SideLost {
		fmt.Fprintf(&b, "A found item may be your lost %q.\n\n", p.YourItemTitle)
	} else {
		fmt.Fprintf(&b, "The item you found, %q, may belong to someone who reported it lost.\n\n", p.YourItemTitle)
	}
	fmt.Fprintf(&b, "Item:     %s\n", p.ItemTitle)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}
	fmt.Fprintf(&b, "Date:     %s\n", p.OccurredOn.Format(time.DateOnly))
	fmt.Fprintf(&b, "Match:    %d%%\n\n", p.ScorePercentage)
	fmt.Fprintf(&b, "View the match: %s\n", p.Link)
	return b.String()
}

// newPayload describes counterpart to the reporter of own.
func newPayload(m model.Match, side model.Side, recipient *model.User, own, counterpart *model.Item, baseURL string) Payload {
	title := cases.Title(language.Und).String(strings.TrimSpace(counterpart.Title))
	return Payload{
		Subject:         fmt.Sprintf("Possible match for your %s item: %s", side, title),
		Recipient:       recipient.Username,
		MatchID:         m.ID,
		Side:            side,
		YourItemTitle:   own.Title,
		ItemTitle:       counterpart.Title,
		Category:        counterpart.Category,
		Location:        counterpart.Location,
		OccurredOn:      counterpart.OccurredOn,
		Score:           m.Score,
		ScorePercentage: m.ScorePercentage(),
		Link:            fmt.Sprintf("%s/items/%d/matches", strings.TrimRight(baseURL, "/"), own.ID),
	}
}

package rules

import (
	"fmt"
	"math"
)

// Tier is a contiguous score band mapped to a recommendation.
type Tier struct {
	Name  string `json:"name"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Contains reports whether score falls inside the band.
func (t Tier) Contains(score int) bool {
	return score >= t.Min && score <= t.Max
}

// Note is the trace entry written when the tier is chosen for score.
func (t Tier) Note(score int) string {
	return fmt.Sprintf("Score %d -> %s (%s)", score, t.Name, t.Title)
}

var tiers = []Tier{
	{Name: "green", Min: 0, Max: 3, Title: "Self-care",
		Text: "Light exercise, maintain routine, social contact."},
	{Name: "yellow", Min: 4, Max: 7, Title: "Structured self-help",
		Text: "Mindfulness, sleep hygiene, journaling."},
	{Name: "orange", Min: 8, Max: 11, Title: "Guided support",
		Text: "CBT worksheets, guidance from a counselor."},
	{Name: "red", Min: 12, Max: math.MaxInt, Title: "Professional help needed",
		Text: "Consult a licensed mental health professional."},
}

// Tiers returns the severity bands in ascending order. The returned slice is a copy.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

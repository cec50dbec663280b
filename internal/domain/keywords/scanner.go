// Package keywords scans optional free text for configured trigger phrases.
package keywords

import (
	"strconv"
	"strings"

	"github.com/okian/mindcheck/internal/domain/rules"
)

// Trigger is one phrase to look for. Emergency triggers escalate the
// assessment.
type Trigger struct {
	Phrase    string `json:"phrase" koanf:"phrase"`
	Emergency bool   `json:"emergency" koanf:"emergency"`
}

// DefaultTriggers returns the stock trigger list in match order.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{Phrase: "panic"},
		{Phrase: "panic attack"},
		{Phrase: "hopeless"},
		{Phrase: "no point"},
		{Phrase: "kill myself", Emergency: true},
		{Phrase: "suicide", Emergency: true},
		{Phrase: "overwhelmed"},
	}
}

// Hit is a trigger found in the text.
type Hit struct {
	Trigger Trigger
}

// Pattern is the pattern name emitted for the hit.
func (h Hit) Pattern() string {
	return "Keyword: " + h.Trigger.Phrase
}

// Delta is the score contribution of the hit.
func (h Hit) Delta() int {
	if h.Trigger.Emergency {
		return rules.EmergencyDelta
	}
	return 0
}

// Note is the trace entry written for the hit.
func (h Hit) Note() string {
	if h.Trigger.Emergency {
		return "Keyword detected: " + h.Trigger.Phrase + " -> Emergency +" + strconv.Itoa(h.Delta())
	}
	return "Keyword detected: " + h.Trigger.Phrase
}

// Scanner matches text against an immutable trigger list. It is safe for
// concurrent use.
type Scanner struct {
	triggers []Trigger
}

// Option applies a configuration option to the Scanner.
type Option func(*Scanner)

// WithTriggers replaces the trigger list. Phrases are trimmed and
// lower-cased; empty and repeated phrases are dropped. A repeated phrase
// keeps its first position but becomes an emergency trigger if any copy is.
func WithTriggers(triggers []Trigger) Option {
	return func(s *Scanner) {
		if triggers != nil {
			s.triggers = normalize(triggers)
		}
	}
}

// NewScanner creates a scanner with the default triggers unless overridden.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		triggers: normalize(DefaultTriggers()),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Triggers returns a copy of the normalized trigger list.
func (s *Scanner) Triggers() []Trigger {
	out := make([]Trigger, len(s.triggers))
	copy(out, s.triggers)
	return out
}

// Scan returns the triggers contained in text, case-insensitively, in
// trigger-list order. Blank text yields no hits.
func (s *Scanner) Scan(text string) []Hit {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var hits []Hit
	for _, t := range s.triggers {
		if strings.Contains(lower, t.Phrase) {
			hits = append(hits, Hit{Trigger: t})
		}
	}
	return hits
}

func normalize(in []Trigger) []Trigger {
	out := make([]Trigger, 0, len(in))
	index := make(map[string]int, len(in))
	for _, t := range in {
		phrase := strings.ToLower(strings.TrimSpace(t.Phrase))
		if phrase == "" {
			continue
		}
		if i, ok := index[phrase]; ok {
			out[i].Emergency = out[i].Emergency || t.Emergency
			continue
		}
		index[phrase] = len(out)
		out = append(out, Trigger{Phrase: phrase, Emergency: t.Emergency})
	}
	return out
}

// Package evaluation applies the rule base to one snapshot in a single
// deterministic pass and explains the outcome.
//
// An Evaluator holds only immutable configuration and can serve concurrent
// calls. Each call allocates its own session: score, pattern set,
// recommendations and trace are never shared between calls.
package evaluation

import (
	"context"
	"fmt"

	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/internal/domain/rules"
	"github.com/okian/mindcheck/pkg/logger"
)

// Emergency sources reported in Result.EmergencySources.
const (
	SourceSelfHarm = "self_harm"
	SourceKeyword  = "keyword"
)

// Recommendation is a titled piece of advice.
type Recommendation struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Score    int      `json:"score"`
	Patterns []string `json:"patterns"`
	// Recommendations lists the emergency entry first, if any, then the tier entry.
	Recommendations []Recommendation `json:"recommendations"`
	Trace           []string         `json:"trace"`
	// Tier is the name of the selected severity band.
	Tier string `json:"tier"`
	// EmergencySources lists what escalated the assessment, one entry per firing.
	EmergencySources []string `json:"-"`
}

// Emergency reports whether the result carries an emergency recommendation.
func (r Result) Emergency() bool {
	return len(r.EmergencySources) > 0
}

// Evaluator runs the rule catalog, the keyword scanner and the tier selector.
type Evaluator struct {
	catalog []rules.Rule
	tiers   []rules.Tier
	scanner *keywords.Scanner
	logger  logger.Logger
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithScanner sets the keyword scanner.
func WithScanner(scanner *keywords.Scanner) Option {
	return func(e *Evaluator) {
		if scanner != nil {
			e.scanner = scanner
		}
	}
}

// WithCatalog replaces the built-in rule catalog.
func WithCatalog(catalog []rules.Rule) Option {
	return func(e *Evaluator) {
		if catalog != nil {
			e.catalog = append([]rules.Rule(nil), catalog...)
		}
	}
}

// WithTiers replaces the built-in severity tiers.
func WithTiers(tiers []rules.Tier) Option {
	return func(e *Evaluator) {
		if tiers != nil {
			e.tiers = append([]rules.Tier(nil), tiers...)
		}
	}
}

// WithLogger sets a custom logger for the evaluator.
func WithLogger(l logger.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Evaluator with the built-in rule base and default triggers.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		catalog: rules.Catalog(),
		tiers:   rules.Tiers(),
		scanner: keywords.NewScanner(),
		logger:  logger.Discard(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Triggers returns the keyword triggers in use.
func (e *Evaluator) Triggers() []keywords.Trigger {
	return e.scanner.Triggers()
}

// Evaluate validates the snapshot and evaluates it. It returns an error
// wrapping assessment.ErrInvalidInput before any rule runs if the snapshot
// is out of domain, or one wrapping ErrInternal if an invariant breaks.
// ctx is used for logging only; evaluation never blocks.
func (e *Evaluator) Evaluate(ctx context.Context, s assessment.Snapshot) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	ss := newSession()

	for _, r := range e.catalog {
		if r.Match(s) {
			ss.fire(r)
		}
	}

	for _, hit := range e.scanner.Scan(s.FreeText) {
		ss.hit(hit)
	}

	// The tier is chosen once, from the final score.
	tier, err := e.selectTier(ss.score)
	if err != nil {
		return Result{}, err
	}
	ss.tracer.Record(tier.Note(ss.score))

	res := ss.result(tier)
	e.logger.Debug(ctx, "assessment evaluated",
		logger.Int("score", res.Score),
		logger.String("tier", res.Tier),
		logger.Int("patterns", len(res.Patterns)),
		logger.Int("trace", len(res.Trace)),
		logger.Bool("emergency", res.Emergency()),
	)
	return res, nil
}

func (e *Evaluator) selectTier(score int) (rules.Tier, error) {
	if score < 0 {
		return rules.Tier{}, &InternalError{Invariant: "non-negative score", Detail: fmt.Sprintf("score %d", score)}
	}

	var matched []rules.Tier
	for _, t := range e.tiers {
		if t.Contains(score) {
			matched = append(matched, t)
		}
	}
	if len(matched) != 1 {
		return rules.Tier{}, &InternalError{
			Invariant: "exactly one tier",
			Detail:    fmt.Sprintf("score %d matched %d tiers", score, len(matched)),
		}
	}
	return matched[0], nil
}

// session is the per-call evaluation state.
type session struct {
	score     int
	patterns  []string
	seen      map[string]struct{}
	emergency *Recommendation
	sources   []string
	tracer    Tracer
}

func newSession() *session {
	return &session{seen: make(map[string]struct{})}
}

func (ss *session) fire(r rules.Rule) {
	ss.tracer.Record(r.Note)
	ss.score += r.Delta
	ss.addPattern(r.Pattern)
	if r.Emergency {
		ss.escalate(SourceSelfHarm, rules.SelfHarmEmergencyText)
	}
}

func (ss *session) hit(h keywords.Hit) {
	ss.tracer.Record(h.Note())
	ss.score += h.Delta()
	ss.addPattern(h.Pattern())
	if h.Trigger.Emergency {
		ss.escalate(SourceKeyword, rules.KeywordEmergencyText)
	}
}

func (ss *session) addPattern(name string) {
	if name == "" {
		return
	}
	if _, ok := ss.seen[name]; ok {
		return
	}
	ss.seen[name] = struct{}{}
	ss.patterns = append(ss.patterns, name)
}

// escalate records the source; only the first source's text becomes the
// emergency recommendation.
func (ss *session) escalate(source, text string) {
	ss.sources = append(ss.sources, source)
	if ss.emergency == nil {
		ss.emergency = &Recommendation{Title: rules.EmergencyTitle, Text: text}
	}
}

func (ss *session) result(tier rules.Tier) Result {
	recs := make([]Recommendation, 0, 2)
	if ss.emergency != nil {
		recs = append(recs, *ss.emergency)
	}
	recs = append(recs, Recommendation{Title: tier.Title, Text: tier.Text})

	patterns := ss.patterns
	if patterns == nil {
		patterns = []string{}
	}

	return Result{
		Score:            ss.score,
		Patterns:         patterns,
		Recommendations:  recs,
		Trace:            ss.tracer.Entries(),
		Tier:             tier.Name,
		EmergencySources: ss.sources,
	}
}

package api

import (
	"net/http"

	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/internal/domain/rules"
)

// RulesDependencies exposes the rule base for listing.
type RulesDependencies interface {
	Catalog() []rules.Descriptor
	Tiers() []rules.Tier
	Triggers() []keywords.Trigger
}

// RulesHandler handles rule listing requests.
type RulesHandler struct {
	deps RulesDependencies
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(deps RulesDependencies) *RulesHandler {
	return &RulesHandler{deps: deps}
}

// HandleGetRules handles GET /rules requests.
func (h *RulesHandler) HandleGetRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rulesResponse{
		Rules:    h.deps.Catalog(),
		Tiers:    h.deps.Tiers(),
		Triggers: h.deps.Triggers(),
	})
}

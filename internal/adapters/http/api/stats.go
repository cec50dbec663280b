package api

import (
	"net/http"
)

// StatsProvider exposes the service counters.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

type ruleBaseStats struct {
	Rules             int `json:"rules"`
	Tiers             int `json:"tiers"`
	Triggers          int `json:"triggers"`
	EmergencyTriggers int `json:"emergency_triggers"`
}

type statsResponse struct {
	Service  map[string]interface{} `json:"service"`
	RuleBase ruleBaseStats          `json:"rule_base"`
}

// StatsHandler reports service counters next to the size of the active rule base.
type StatsHandler struct {
	counters StatsProvider
	ruleBase RulesDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(counters StatsProvider, ruleBase RulesDependencies) *StatsHandler {
	return &StatsHandler{counters: counters, ruleBase: ruleBase}
}

func (h *StatsHandler) snapshot() statsResponse {
	triggers := h.ruleBase.Triggers()
	emergency := 0
	for _, t := range triggers {
		if t.Emergency {
			emergency++
		}
	}
	return statsResponse{
		Service: h.counters.GetStats(),
		RuleBase: ruleBaseStats{
			Rules:             len(h.ruleBase.Catalog()),
			Tiers:             len(h.ruleBase.Tiers()),
			Triggers:          len(triggers),
			EmergencyTriggers: emergency,
		},
	}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot())
}

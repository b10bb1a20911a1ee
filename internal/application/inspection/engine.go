package inspection

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/party"
)

// Finding is one rule match against one party.
type Finding struct {
	ID       uuid.UUID      `json:"id"`
	RuleID   uuid.UUID      `json:"ruleId"`
	Rule     string         `json:"rule"`
	Role     party.Role     `json:"role"`
	Severity event.Severity `json:"severity"`
	At       time.Time      `json:"at"`
}

// Engine evaluates inspection rules against party snapshots and keeps
// the findings produced so far.
type Engine struct {
	mu       sync.Mutex
	rules    []*Rule
	findings []Finding
	sink     event.Sink
	logger   zerolog.Logger
}

// NewEngine creates an engine with the given standing rules.
func NewEngine(rules []*Rule, sink event.Sink, logger zerolog.Logger) *Engine {
	if sink == nil {
		sink = event.Nop{}
	}
	return &Engine{
		rules:  rules,
		sink:   sink,
		logger: logger.With().Str("service", "inspection").Logger(),
	}
}

// AddRule registers an additional standing rule.
func (e *Engine) AddRule(rule *Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
}

// Rules returns the standing rules.
func (e *Engine) Rules() []*Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// InspectParty evaluates every rule against one party snapshot and
// records and publishes the matches. Rules that fail to evaluate are
// logged and skipped.
func (e *Engine) InspectParty(snap party.Snapshot) []Finding {
	params := snapshotParams(snap)

	e.mu.Lock()
	defer e.mu.Unlock()
	var matched []Finding
	for _, rule := range e.rules {
		ok, err := rule.Evaluate(params)
		if err != nil {
			e.logger.Warn().Err(err).Str("rule", rule.Name).Str("role", string(snap.Role)).
				Msg("rule evaluation failed")
			continue
		}
		if !ok {
			continue
		}
		finding := Finding{
			ID:       uuid.New(),
			RuleID:   rule.ID,
			Rule:     rule.Name,
			Role:     snap.Role,
			Severity: rule.Severity,
			At:       time.Now().UTC(),
		}
		matched = append(matched, finding)
		e.findings = append(e.findings, finding)
		e.sink.Publish(event.New(rule.Severity, event.CodeRuleMatch, string(snap.Role),
			fmt.Sprintf("rule %q matched", rule.Name)))
	}
	return matched
}

// InspectChain evaluates every rule against every snapshot.
func (e *Engine) InspectChain(snaps []party.Snapshot) []Finding {
	var matched []Finding
	for _, snap := range snaps {
		matched = append(matched, e.InspectParty(snap)...)
	}
	return matched
}

// Findings returns every finding recorded so far.
func (e *Engine) Findings() []Finding {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Finding, len(e.findings))
	copy(out, e.findings)
	return out
}

// snapshotParams flattens a snapshot's JSON form into expression
// parameters. Nested objects become dotted keys; arrays are exposed by
// size only.
func snapshotParams(snap party.Snapshot) map[string]interface{} {
	params := map[string]interface{}{
		"inventorySize": len(snap.Inventory),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return params
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return params
	}
	flatten("", raw, params)
	return params
}

func flatten(prefix string, m map[string]interface{}, out map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch vv := v.(type) {
		case map[string]interface{}:
			flatten(key, vv, out)
		case []interface{}:
			out[key+".size"] = len(vv)
		default:
			out[key] = vv
		}
	}
}

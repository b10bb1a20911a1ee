package inspection

import (
	"errors"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/google/uuid"

	"github.com/foodchain/foodchain/internal/domain/event"
)

var ErrEmptyExpression = errors.New("rule expression is empty")

// Rule is a boolean expression evaluated against a party's flattened
// snapshot. A rule that evaluates to true produces a finding.
type Rule struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Expression string         `json:"expression"`
	Severity   event.Severity `json:"severity"`
	CreatedAt  time.Time      `json:"createdAt"`

	compiled *govaluate.EvaluableExpression
}

// NewRule compiles an expression into a rule. The expression must be
// valid govaluate syntax.
func NewRule(name, expression string, severity event.Severity) (*Rule, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	compiled, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, err
	}
	return &Rule{
		ID:         uuid.New(),
		Name:       name,
		Expression: expression,
		Severity:   severity,
		CreatedAt:  time.Now().UTC(),
		compiled:   compiled,
	}, nil
}

// Evaluate runs the rule against the given parameters. A non-boolean
// result is an error.
func (r *Rule) Evaluate(params map[string]interface{}) (bool, error) {
	result, err := r.compiled.Evaluate(params)
	if err != nil {
		return false, err
	}
	matched, ok := result.(bool)
	if !ok {
		return false, errors.New("rule did not evaluate to boolean")
	}
	return matched, nil
}

// DefaultRules returns the standing inspection rules applied to every
// party after each market operation.
func DefaultRules() []*Rule {
	defs := []struct {
		name       string
		expression string
		severity   event.Severity
	}{
		{"double-spend-attempted", "doubleSpendAttempts >= 1", event.SeverityCritical},
		{"request-rejected", "requestState == 'REJECTED'", event.SeverityWarning},
		{"payment-pending", "moneyReceived == true", event.SeverityInfo},
	}
	rules := make([]*Rule, 0, len(defs))
	for _, s := range defs {
		rule, err := NewRule(s.name, s.expression, s.severity)
		if err != nil {
			// the default expressions are constants; a compile failure
			// is a programming error
			panic(err)
		}
		rules = append(rules, rule)
	}
	return rules
}

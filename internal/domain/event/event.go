package event

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Severity grades a published event.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Code classifies what happened.
type Code string

const (
	CodeRoleViolation     Code = "ROLE_VIOLATION"
	CodeDoubleSpend       Code = "DOUBLE_SPEND"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeSettlement        Code = "SETTLEMENT"
	CodeRuleMatch         Code = "RULE_MATCH"
)

// Event is a single human-readable notification emitted by the chain.
// The Text of warning events is asserted verbatim by tests and must not
// be reworded.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Severity Severity  `json:"severity"`
	Code     Code      `json:"code"`
	Role     string    `json:"role,omitempty"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// New creates an event stamped with a fresh ID and UTC time.
func New(severity Severity, code Code, role, text string) Event {
	return Event{
		ID:       uuid.New(),
		Severity: severity,
		Code:     code,
		Role:     role,
		Text:     text,
		At:       time.Now().UTC(),
	}
}

// Warning creates a WARNING event.
func Warning(code Code, role, text string) Event {
	return New(SeverityWarning, code, role, text)
}

// Info creates an INFO event.
func Info(code Code, role, text string) Event {
	return New(SeverityInfo, code, role, text)
}

// Sink receives events. Channels and parties are constructed with a
// Sink instead of writing to process-wide output, so tests can capture
// what was emitted.
type Sink interface {
	Publish(e Event)
}

// Multi fans one event out to several sinks.
type Multi []Sink

func (m Multi) Publish(e Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(e)
		}
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}

// Capture collects events in memory for assertions.
type Capture struct {
	mu     sync.Mutex
	events []Event
}

// NewCapture creates an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of everything published so far.
func (c *Capture) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// ContainsText reports whether any published event text contains substr.
func (c *Capture) ContainsText(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if strings.Contains(e.Text, substr) {
			return true
		}
	}
	return false
}

// CountCode returns how many published events carry the given code.
func (c *Capture) CountCode(code Code) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Logger writes events through zerolog.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a sink backed by the given logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "chain").Logger()}
}

func (l *Logger) Publish(e Event) {
	evt := l.logger.Info()
	switch e.Severity {
	case SeverityWarning:
		evt = l.logger.Warn()
	case SeverityCritical:
		evt = l.logger.Error()
	}
	evt.Str("code", string(e.Code)).Str("role", e.Role).Msg(e.Text)
}

// Package trace routes the agent's textual output and structured learning
// events. Textual messages go to the agent output sink; structured events go
// through zap so hosts can consume them as machine-readable records.
package trace

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Structured event tag and attribute names. Stable within a release.
const (
	TagLearning     = "learning"
	TagProduction   = "production"
	AttrProdName    = "prod_name"
	AttrRuleKind    = "rule_kind"
	AttrDecisionNum = "decision"
	EventWarning    = "warning"
	EventVerbose    = "verbose"
)

// Settings holds the trace category toggles the core consults before
// printing. The zero value traces nothing.
type Settings struct {
	ChunkNames         bool
	Chunks             bool
	JustificationNames bool
	Justifications     bool
	ChunkWarnings      bool
}

// Tracer is the agent's output funnel. Safe for settings updates from a
// config watcher goroutine while the decision thread prints.
type Tracer struct {
	mu       sync.RWMutex
	out      io.Writer
	logger   *zap.Logger
	settings Settings
}

// New creates a tracer writing textual output to out and structured events
// to logger. Both may be nil; nil sinks drop their half of the output.
func New(out io.Writer, logger *zap.Logger) *Tracer {
	return &Tracer{out: out, logger: logger}
}

// Discard returns a tracer that drops everything. Useful in tests.
func Discard() *Tracer {
	return &Tracer{out: io.Discard, logger: zap.NewNop()}
}

// SetSettings replaces the category toggles.
func (t *Tracer) SetSettings(s Settings) {
	t.mu.Lock()
	t.settings = s
	t.mu.Unlock()
}

// Settings returns a copy of the current toggles.
func (t *Tracer) Settings() Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// Printf writes a textual message to the agent output sink.
func (t *Tracer) Printf(format string, args ...interface{}) {
	t.mu.RLock()
	out := t.out
	t.mu.RUnlock()
	if out == nil {
		return
	}
	fmt.Fprintf(out, format, args...)
}

// Warnf writes a textual warning to the sink and emits a structured warning
// event.
func (t *Tracer) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.Printf("%s", msg)
	t.mu.RLock()
	logger := t.logger
	t.mu.RUnlock()
	if logger != nil {
		logger.Warn(EventWarning, zap.String("message", msg))
	}
}

// Verbose emits a structured verbose event without touching the sink. The
// caller decides whether the textual copy was already printed.
func (t *Tracer) Verbose(msg string) {
	t.mu.RLock()
	logger := t.logger
	t.mu.RUnlock()
	if logger != nil {
		logger.Debug(EventVerbose, zap.String("message", msg))
	}
}

// LearningEvent emits the structured record for a freshly named rule.
func (t *Tracer) LearningEvent(prodName, ruleKind string, decision uint64) {
	t.mu.RLock()
	logger := t.logger
	t.mu.RUnlock()
	if logger != nil {
		logger.Info(TagLearning,
			zap.String(AttrProdName, prodName),
			zap.String(AttrRuleKind, ruleKind),
			zap.Uint64(AttrDecisionNum, decision),
		)
	}
}

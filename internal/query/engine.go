// ABOUTME: Engine is the single entry point for answering a classified query.
// ABOUTME: Runs metric and time extraction, then synthesis against a record source.
package query

import (
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"go.uber.org/zap"
)

// Engine answers (intent, text, today) queries. It holds no per-query state.
type Engine struct {
	metrics *MetricResolver
	parser  *Parser
	synth   *Synthesizer
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithParser replaces the time expression parser.
func WithParser(p *Parser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithMetricResolver replaces the built-in synonym table.
func WithMetricResolver(r *MetricResolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.metrics = r
		}
	}
}

// NewEngine creates an Engine reading records from source.
func NewEngine(source RecordSource, opts ...Option) *Engine {
	e := &Engine{
		metrics: defaultResolver,
		parser:  NewParser(),
		synth:   NewSynthesizer(source),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract resolves the metric and time expression in text without reading records.
func (e *Engine) Extract(intent models.Intent, text string, today time.Time) Request {
	req := Request{Intent: intent, Today: models.DateOf(today)}
	req.Metric, req.HasMetric = e.metrics.Resolve(text)

	var rule string
	req.Expr, rule, req.HasExpr = e.parser.Match(text, today)

	fields := []zap.Field{
		zap.String("intent", string(intent)),
		zap.String("metric", string(req.Metric)),
	}
	if req.HasExpr {
		fields = append(fields, zap.String("rule", rule), zap.Stringer("expr", req.Expr))
	}
	e.logger.Debug("extracted query entities", fields...)
	return req
}

// Answer extracts entities from text and synthesizes the response.
func (e *Engine) Answer(intent models.Intent, text string, today time.Time) Answer {
	a := e.synth.Synthesize(e.Extract(intent, text, today))

	fields := []zap.Field{
		zap.String("intent", string(intent)),
		zap.String("outcome", string(a.Outcome)),
	}
	if a.HasRange {
		fields = append(fields, zap.Stringer("range", a.Range))
	}
	if a.Err != nil {
		fields = append(fields, zap.Error(a.Err))
	}
	e.logger.Debug("synthesized answer", fields...)
	return a
}

// ABOUTME: Chat session that routes each line to the query engine, rules or assistant.
// ABOUTME: Owns the conversation history and appends unclassified questions to a CSV log.
package coach

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthcoach/internal/advice"
	"github.com/harperreed/healthcoach/internal/assistant"
	"github.com/harperreed/healthcoach/internal/classifier"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/harperreed/healthcoach/internal/telemetry"
	"go.uber.org/zap"
)

const (
	aiPrefix = "@ai"

	TitleAssistant = "AI Assistant"
	TitleAdvice    = "Advice"

	MsgEmptyAI       = "Please ask a question after @ai"
	MsgNoAssistant   = "The AI assistant is not configured."
	msgAssistantFail = "Error communicating with the assistant: %v"
)

// Generator produces free-form replies.
type Generator interface {
	Generate(ctx context.Context, req assistant.Request) (string, error)
}

// Reply is what the chat prints for one line.
type Reply struct {
	Title      string
	Text       string
	Intent     models.Intent
	Confidence float64
	// Answer is set when the query engine produced the reply.
	Answer *query.Answer
}

// Session handles one interactive conversation.
type Session struct {
	id          string
	source      query.RecordSource
	engine      *query.Engine
	classifier  *classifier.Classifier
	assistant   Generator
	history     *assistant.History
	fallbackLog string
	recorder    *telemetry.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithAssistant sets the assistant. Without one, @ai and unknown questions get
// MsgNoAssistant and advice uses the rules.
func WithAssistant(g Generator) Option {
	return func(s *Session) { s.assistant = g }
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *classifier.Classifier) Option {
	return func(s *Session) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithEngine replaces the default query engine.
func WithEngine(e *query.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithHistory sets the conversation history.
func WithHistory(h *assistant.History) Option {
	return func(s *Session) {
		if h != nil {
			s.history = h
		}
	}
}

// WithFallbackLog sets the CSV file unclassified questions are appended to.
// An empty path disables the log.
func WithFallbackLog(path string) Option {
	return func(s *Session) { s.fallbackLog = path }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r *telemetry.Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for "today" and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates a Session reading from source.
func NewSession(source query.RecordSource, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		source:     source,
		classifier: classifier.New(),
		history:    assistant.NewHistory(assistant.DefaultHistoryTurns),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = query.NewEngine(source, query.WithLogger(s.logger))
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns the conversation history.
func (s *Session) History() *assistant.History {
	return s.history
}

// IsExit reports whether line ends the chat.
func IsExit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}

// Handle answers one line. Blank lines yield an empty Reply.
func (s *Session) Handle(ctx context.Context, line string) Reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reply{}
	}

	if len(line) >= len(aiPrefix) && strings.EqualFold(line[:len(aiPrefix)], aiPrefix) {
		question := strings.TrimSpace(strings.TrimPrefix(line[len(aiPrefix):], "?"))
		if question == "" {
			return Reply{Title: TitleAssistant, Text: MsgEmptyAI, Intent: models.IntentUnknown}
		}
		return s.ask(ctx, question, models.IntentUnknown, 0)
	}

	res := s.classifier.Classify(line)
	s.logger.Debug("classified line",
		zap.String("intent", string(res.Intent)),
		zap.Float64("confidence", res.Confidence))

	switch res.Intent {
	case models.IntentUnknown:
		s.recorder.Fallback()
		if err := s.logFallback(line, res.Confidence); err != nil {
			s.logger.Warn("fallback log write failed", zap.Error(err))
		}
		return s.ask(ctx, line, res.Intent, res.Confidence)

	case models.IntentAdvice:
		if s.assistant != nil {
			reply, err := s.generate(ctx, line)
			if err == nil {
				return Reply{Title: TitleAdvice, Text: reply, Intent: res.Intent, Confidence: res.Confidence}
			}
			s.logger.Warn("assistant unavailable, using rules", zap.Error(err))
		}
		return Reply{Title: TitleAdvice, Text: s.rules(), Intent: res.Intent, Confidence: res.Confidence}

	default:
		start := time.Now()
		a := s.engine.Answer(res.Intent, line, s.now())
		s.recorder.ObserveQuery(string(res.Intent), a.Err, time.Since(start))
		return Reply{
			Title:      Title(res.Intent),
			Text:       a.Response,
			Intent:     res.Intent,
			Confidence: res.Confidence,
			Answer:     &a,
		}
	}
}

func (s *Session) ask(ctx context.Context, question string, intent models.Intent, confidence float64) Reply {
	r := Reply{Title: TitleAssistant, Intent: intent, Confidence: confidence}
	if s.assistant == nil {
		r.Text = MsgNoAssistant
		return r
	}
	text, err := s.generate(ctx, question)
	if err != nil {
		r.Text = fmt.Sprintf(msgAssistantFail, err)
		return r
	}
	r.Text = text
	return r
}

// generate calls the assistant with the latest record as context and
// records the turn on success.
func (s *Session) generate(ctx context.Context, question string) (string, error) {
	req := assistant.Request{
		Prompt:  question,
		Context: s.latestContext(),
		History: s.history.Turns(),
	}
	text, err := s.assistant.Generate(ctx, req)
	s.recorder.Assistant(err)
	if err != nil {
		return "", err
	}
	s.history.Add(question, text)
	return text, nil
}

func (s *Session) latest() *models.DailyRecord {
	r, err := s.source.Latest()
	if err != nil {
		s.logger.Warn("latest record lookup failed", zap.Error(err))
		return nil
	}
	return r
}

func (s *Session) latestContext() string {
	return LatestContext(s.latest())
}

func (s *Session) rules() string {
	return advice.For(s.latest()).String()
}

// LatestContext describes a record for the assistant prompt. A nil record
// yields an empty context.
func LatestContext(r *models.DailyRecord) string {
	if r == nil {
		return ""
	}
	parts := []string{"date=" + r.DateString()}
	for _, id := range r.Present() {
		parts = append(parts, fmt.Sprintf("%s=%s", id, query.FormatValue(id, r.Value(id))))
	}
	return "Latest metrics: " + strings.Join(parts, ", ")
}

// logFallback appends timestamp,query,confidence to the fallback CSV.
func (s *Session) logFallback(line string, confidence float64) error {
	if s.fallbackLog == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.fallbackLog), 0o750); err != nil {
		return fmt.Errorf("create fallback log dir: %w", err)
	}
	f, err := os.OpenFile(s.fallbackLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open fallback log: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		s.now().Format(time.RFC3339),
		line,
		strconv.FormatFloat(confidence, 'f', 2, 64),
	}); err != nil {
		return fmt.Errorf("write fallback log: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Title renders an intent as a panel title, e.g. "Get Current".
func Title(intent models.Intent) string {
	words := strings.Split(string(intent), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

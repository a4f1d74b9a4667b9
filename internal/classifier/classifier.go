// ABOUTME: Keyword scorer that labels a question with an intent and a confidence.
// ABOUTME: Deterministic; below the threshold the intent is unknown.
package classifier

import (
	"strings"
	"unicode"

	"github.com/harperreed/healthcoach/internal/models"
	"go.uber.org/zap"
)

// DefaultThreshold is the minimum confidence for a labelled intent.
const DefaultThreshold = 0.5

// saturation is the cue weight at which the winning intent is fully confident.
const saturation = 2.0

type cue struct {
	phrase string
	weight float64
}

// cues are matched as whole words against the normalized question.
var cues = map[models.Intent][]cue{
	models.IntentGetCurrent: {
		{"today", 1}, {"now", 1}, {"right now", 1}, {"current", 1.5}, {"currently", 1.5},
		{"this morning", 1}, {"last night", 1}, {"status", 1}, {"update", 0.5},
		{"what is my", 0.5}, {"how is my", 0.5}, {"check", 0.5}, {"show me", 0.5},
		{"get my", 0.5}, {"tell me my", 0.5}, {"pull up", 0.5},
	},
	models.IntentGetHistory: {
		{"last week", 1.5}, {"last month", 1.5}, {"past", 1}, {"previous", 1},
		{"history", 1.5}, {"trend", 1.5}, {"average", 1.5}, {"over", 1}, {"during", 1},
		{"yesterday", 1}, {"days", 1}, {"weeks", 1}, {"week", 0.5}, {"month", 0.5},
		{"ago", 1}, {"was", 0.5}, {"did", 0.5}, {"improve", 0.5}, {"decline", 1},
		{"stable", 1}, {"summary", 1}, {"graph", 1}, {"change", 0.5}, {"from", 0.5},
		{"between", 0.5},
	},
	models.IntentCompare: {
		{"compare", 2}, {"comparison", 2}, {"vs", 2}, {"versus", 2}, {"difference", 2},
		{"better", 1}, {"higher", 1}, {"lower", 1}, {"which", 1}, {"against", 1},
		{"between", 1},
	},
	models.IntentAdvice: {
		{"why", 2}, {"improve", 1.5}, {"increase", 1.5}, {"boost", 1.5}, {"optimize", 1.5},
		{"tips", 2}, {"advice", 2}, {"should i", 2}, {"suggest", 1.5}, {"recommend", 1.5},
		{"rest day", 1.5}, {"need rest", 1.5}, {"workout", 1}, {"train", 1}, {"eat", 1.5},
		{"diet", 1.5}, {"how can i", 1.5}, {"how do i", 1.5}, {"how to", 1.5}, {"low", 0.5},
		{"drop", 1}, {"bad", 0.5}, {"worse", 1}, {"caused", 1.5}, {"affects", 1.5},
		{"overall", 1}, {"help", 1},
	},
}

// Result is a classification with per-intent raw scores.
type Result struct {
	Intent     models.Intent
	Confidence float64
	Scores     map[models.Intent]float64
}

// Classifier scores questions against the cue tables.
type Classifier struct {
	threshold float64
	logger    *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold sets the minimum confidence. Values outside [0,1] are ignored.
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		if t >= 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithLogger sets the classifier logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{threshold: DefaultThreshold, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured minimum confidence.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify labels text. Confidence is the winner's share of the total score,
// scaled down while the winner's own score is below saturation. Ties go to the
// intent listed first in models.AllIntents.
func (c *Classifier) Classify(text string) Result {
	norm := normalize(text)
	res := Result{Intent: models.IntentUnknown, Scores: make(map[models.Intent]float64, len(cues))}

	var total, top float64
	best := models.IntentUnknown
	for _, intent := range models.AllIntents {
		var s float64
		for _, cu := range cues[intent] {
			if strings.Contains(norm, " "+cu.phrase+" ") {
				s += cu.weight
			}
		}
		res.Scores[intent] = s
		total += s
		if s > top {
			top, best = s, intent
		}
	}

	if total > 0 {
		res.Confidence = (top / total) * min(1, top/saturation)
	}
	if best != models.IntentUnknown && res.Confidence >= c.threshold {
		res.Intent = best
	}

	c.logger.Debug("classified",
		zap.String("intent", string(res.Intent)),
		zap.String("best", string(best)),
		zap.Float64("confidence", res.Confidence))
	return res
}

// normalize lowercases text, replaces punctuation with spaces and pads the
// result so every word has a space on both sides.
func normalize(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

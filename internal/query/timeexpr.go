// ABOUTME: TimeExpressionParser extracts one unresolved time expression from text.
// ABOUTME: Rules are evaluated in a fixed priority order; the first match wins.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ExprKind tags the variant held by a TimeExpression.
type ExprKind int

const (
	ExprSingleDate ExprKind = iota + 1
	ExprLastNDays
	ExprExplicitRange
	ExprInvalidDate
)

func (k ExprKind) String() string {
	switch k {
	case ExprSingleDate:
		return "single_date"
	case ExprLastNDays:
		return "last_n_days"
	case ExprExplicitRange:
		return "explicit_range"
	case ExprInvalidDate:
		return "invalid_date"
	}
	return "invalid"
}

// TimeExpression is an unresolved time window. Only the fields for its Kind are set.
type TimeExpression struct {
	Kind  ExprKind
	Date  time.Time // ExprSingleDate
	Days  int       // ExprLastNDays
	Start time.Time // ExprExplicitRange
	End   time.Time // ExprExplicitRange
	Raw   string    // ExprInvalidDate
}

// SingleDate builds a one-day expression.
func SingleDate(d time.Time) TimeExpression {
	return TimeExpression{Kind: ExprSingleDate, Date: models.DateOf(d)}
}

// LastNDays builds a trailing window of n complete days.
func LastNDays(n int) TimeExpression {
	return TimeExpression{Kind: ExprLastNDays, Days: n}
}

// ExplicitRange builds a literal range. start > end is kept as-is; Resolve rejects it.
func ExplicitRange(start, end time.Time) TimeExpression {
	return TimeExpression{Kind: ExprExplicitRange, Start: models.DateOf(start), End: models.DateOf(end)}
}

// InvalidDate records a date token that looked like YYYY-MM-DD but is not a
// calendar date. Resolve always rejects it.
func InvalidDate(raw string) TimeExpression {
	return TimeExpression{Kind: ExprInvalidDate, Raw: raw}
}

func (e TimeExpression) String() string {
	switch e.Kind {
	case ExprSingleDate:
		return fmt.Sprintf("single_date(%s)", models.FormatDate(e.Date))
	case ExprLastNDays:
		return fmt.Sprintf("last_n_days(%d)", e.Days)
	case ExprExplicitRange:
		return fmt.Sprintf("explicit_range(%s, %s)", models.FormatDate(e.Start), models.FormatDate(e.End))
	case ExprInvalidDate:
		return fmt.Sprintf("invalid_date(%s)", e.Raw)
	}
	return "invalid"
}

var (
	fromToPattern  = regexp.MustCompile(`from (\d{4}-\d{2}-\d{2}) to (\d{4}-\d{2}-\d{2})`)
	betweenPattern = regexp.MustCompile(`between (\d{4}-\d{2}-\d{2}) and (\d{4}-\d{2}-\d{2})`)
	sincePattern   = regexp.MustCompile(`since (\d{4}-\d{2}-\d{2})`)
	lastNPattern   = regexp.MustCompile(`(last|past|previous) (\d+) days?`)
	isoPattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// rule inspects lower-cased text and reports whether it produced an expression.
// A rule whose pattern matches an impossible date still matches, with an
// InvalidDate expression, so scanning stops there.
type rule struct {
	name  string
	match func(text string, today time.Time) (TimeExpression, bool)
}

// Parser extracts time expressions. It is immutable after construction.
type Parser struct {
	rules []rule
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithNaturalDates adds a natural-language date rule ("3 days ago", "last
// monday") just before the bare ISO date rule. It only runs when the text
// holds no ISO date, so ISO tokens are always parsed strictly.
func WithNaturalDates() ParserOption {
	return func(p *Parser) {
		w := when.New(nil)
		w.Add(en.All...)
		w.Add(common.All...)

		natural := rule{name: "natural_date", match: func(text string, today time.Time) (TimeExpression, bool) {
			if isoPattern.MatchString(text) {
				return TimeExpression{}, false
			}
			base := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, time.UTC)
			r, err := w.Parse(text, base)
			if err != nil || r == nil {
				return TimeExpression{}, false
			}
			// "now" asks for the current value, not a one-day window.
			if strings.TrimSpace(r.Text) == "now" {
				return TimeExpression{}, false
			}
			return SingleDate(r.Time), true
		}}

		// Insert in front of the last rule (bare ISO date).
		last := p.rules[len(p.rules)-1]
		p.rules = append(p.rules[:len(p.rules)-1], natural, last)
	}
}

// NewParser creates a parser with the standard rule order.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{rules: []rule{
		{name: "explicit_range", match: matchExplicitRange},
		{name: "since", match: matchSince},
		{name: "last_n_days", match: matchLastNDays},
		{name: "last_week_month", match: matchLastWeekMonth},
		{name: "this_week_month", match: matchThisWeekMonth},
		{name: "today_yesterday", match: matchTodayYesterday},
		{name: "iso_date", match: matchISODate},
	}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract returns the expression produced by the first matching rule.
func (p *Parser) Extract(text string, today time.Time) (TimeExpression, bool) {
	expr, _, ok := p.Match(text, today)
	return expr, ok
}

// Match is Extract that also reports which rule matched.
func (p *Parser) Match(text string, today time.Time) (TimeExpression, string, bool) {
	lower := strings.ToLower(text)
	today = models.DateOf(today)
	for _, r := range p.rules {
		if expr, ok := r.match(lower, today); ok {
			return expr, r.name, true
		}
	}
	return TimeExpression{}, "", false
}

// RuleNames lists the rules in evaluation order.
func (p *Parser) RuleNames() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.name
	}
	return names
}

func matchExplicitRange(text string, _ time.Time) (TimeExpression, bool) {
	for _, pat := range []*regexp.Regexp{fromToPattern, betweenPattern} {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, err := models.ParseDate(m[1])
		if err != nil {
			return InvalidDate(m[1]), true
		}
		end, err := models.ParseDate(m[2])
		if err != nil {
			return InvalidDate(m[2]), true
		}
		return ExplicitRange(start, end), true
	}
	return TimeExpression{}, false
}

func matchSince(text string, today time.Time) (TimeExpression, bool) {
	m := sincePattern.FindStringSubmatch(text)
	if m == nil {
		return TimeExpression{}, false
	}
	start, err := models.ParseDate(m[1])
	if err != nil {
		return InvalidDate(m[1]), true
	}
	return ExplicitRange(start, models.AddDays(today, -1)), true
}

func matchLastNDays(text string, _ time.Time) (TimeExpression, bool) {
	m := lastNPattern.FindStringSubmatch(text)
	if m == nil {
		return TimeExpression{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return TimeExpression{}, false
	}
	return LastNDays(n), true
}

func matchLastWeekMonth(text string, _ time.Time) (TimeExpression, bool) {
	if strings.Contains(text, "last week") {
		return LastNDays(7), true
	}
	if strings.Contains(text, "last month") {
		return LastNDays(30), true
	}
	return TimeExpression{}, false
}

func matchThisWeekMonth(text string, today time.Time) (TimeExpression, bool) {
	if strings.Contains(text, "this week") {
		sinceMonday := (int(today.Weekday()) + 6) % 7
		return ExplicitRange(models.AddDays(today, -sinceMonday), today), true
	}
	if strings.Contains(text, "this month") {
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return ExplicitRange(first, today), true
	}
	return TimeExpression{}, false
}

func matchTodayYesterday(text string, today time.Time) (TimeExpression, bool) {
	if strings.Contains(text, "today") {
		return SingleDate(today), true
	}
	if strings.Contains(text, "yesterday") {
		return SingleDate(models.AddDays(today, -1)), true
	}
	return TimeExpression{}, false
}

func matchISODate(text string, _ time.Time) (TimeExpression, bool) {
	tok := isoPattern.FindString(text)
	if tok == "" {
		return TimeExpression{}, false
	}
	d, err := models.ParseDate(tok)
	if err != nil {
		return InvalidDate(tok), true
	}
	return SingleDate(d), true
}

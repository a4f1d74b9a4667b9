package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserExtract(t *testing.T) {
	// Thursday.
	today := day("2025-03-13")
	p := NewParser()

	tests := []struct {
		name string
		text string
		want TimeExpression
	}{
		{"from to", "steps from 2025-01-05 to 2025-01-10", ExplicitRange(day("2025-01-05"), day("2025-01-10"))},
		{"between and", "hrv between 2025-02-01 and 2025-02-14", ExplicitRange(day("2025-02-01"), day("2025-02-14"))},
		{"reversed range kept", "from 2025-01-10 to 2025-01-05", ExplicitRange(day("2025-01-10"), day("2025-01-05"))},
		{"since", "Since 2025-02-01 how was my sleep", ExplicitRange(day("2025-02-01"), day("2025-03-12"))},
		{"last n days", "steps last 3 days", LastNDays(3)},
		{"past n days", "past 14 days", LastNDays(14)},
		{"previous 1 day", "previous 1 day", LastNDays(1)},
		{"last week", "recovery last week", LastNDays(7)},
		{"last month", "recovery last month", LastNDays(30)},
		{"this week", "this week", ExplicitRange(day("2025-03-10"), day("2025-03-13"))},
		{"this month", "this month", ExplicitRange(day("2025-03-01"), day("2025-03-13"))},
		{"today", "What is my recovery today?", SingleDate(day("2025-03-13"))},
		{"yesterday", "sleep yesterday", SingleDate(day("2025-03-12"))},
		{"bare iso", "recovery on 2025-02-20", SingleDate(day("2025-02-20"))},

		// Priority order: earlier rules win even when later ones also match.
		{"range beats today", "today from 2025-01-01 to 2025-01-02", ExplicitRange(day("2025-01-01"), day("2025-01-02"))},
		{"since beats last n", "last 5 days since 2025-01-01", ExplicitRange(day("2025-01-01"), day("2025-03-12"))},
		{"last n beats last week", "last week or last 3 days", LastNDays(3)},
		{"last week beats last month", "last month vs last week", LastNDays(7)},
		{"this week beats iso", "this week vs 2025-01-01", ExplicitRange(day("2025-03-10"), day("2025-03-13"))},
		{"today beats iso", "2025-01-01 or today", SingleDate(day("2025-03-13"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Extract(tt.text, today)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParserNoMatch(t *testing.T) {
	p := NewParser()
	for _, text := range []string{
		"how is my recovery",
		"last few days",
	} {
		_, ok := p.Extract(text, day("2025-03-13"))
		assert.False(t, ok, text)
	}
}

func TestParserImpossibleDates(t *testing.T) {
	p := NewParser(WithNaturalDates())
	tests := []struct {
		text string
		rule string
		want TimeExpression
	}{
		{"steps from 2025-02-30 to 2025-03-05", "explicit_range", InvalidDate("2025-02-30")},
		{"steps from 2025-03-01 to 2025-03-32", "explicit_range", InvalidDate("2025-03-32")},
		{"hrv between 2025-13-01 and 2025-12-01", "explicit_range", InvalidDate("2025-13-01")},
		{"steps since 2025-13-01", "since", InvalidDate("2025-13-01")},
		{"steps on 2025-02-30", "iso_date", InvalidDate("2025-02-30")},
		// The bad date stops the scan before later rules see "today".
		{"since 2025-00-10 or today", "since", InvalidDate("2025-00-10")},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, rule, ok := p.Match(tt.text, day("2025-03-13"))
			require.True(t, ok)
			assert.Equal(t, tt.rule, rule)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParserThisWeekOnMondayAndSunday(t *testing.T) {
	p := NewParser()

	got, ok := p.Extract("this week", day("2025-03-10"))
	require.True(t, ok)
	assert.Equal(t, ExplicitRange(day("2025-03-10"), day("2025-03-10")), got)

	got, ok = p.Extract("this week", day("2025-03-16"))
	require.True(t, ok)
	assert.Equal(t, ExplicitRange(day("2025-03-10"), day("2025-03-16")), got)
}

func TestParserRuleOrder(t *testing.T) {
	assert.Equal(t, []string{
		"explicit_range", "since", "last_n_days", "last_week_month",
		"this_week_month", "today_yesterday", "iso_date",
	}, NewParser().RuleNames())

	names := NewParser(WithNaturalDates()).RuleNames()
	require.Len(t, names, 8)
	assert.Equal(t, "natural_date", names[6])
	assert.Equal(t, "iso_date", names[7])
}

func TestParserMatchReportsRule(t *testing.T) {
	_, rule, ok := NewParser().Match("since 2025-01-01", day("2025-03-13"))
	require.True(t, ok)
	assert.Equal(t, "since", rule)
}

func TestParserNaturalDates(t *testing.T) {
	p := NewParser(WithNaturalDates())
	today := day("2025-03-13")

	got, rule, ok := p.Match("recovery 3 days ago", today)
	require.True(t, ok)
	assert.Equal(t, "natural_date", rule)
	assert.Equal(t, SingleDate(day("2025-03-10")), got)

	// ISO dates bypass the natural-language layer.
	got, rule, ok = p.Match("recovery on 2025-02-20", today)
	require.True(t, ok)
	assert.Equal(t, "iso_date", rule)
	assert.Equal(t, SingleDate(day("2025-02-20")), got)

	// Earlier literal rules still take priority.
	got, rule, ok = p.Match("sleep yesterday", today)
	require.True(t, ok)
	assert.Equal(t, "today_yesterday", rule)
	assert.Equal(t, SingleDate(day("2025-03-12")), got)
}

func TestParserNaturalDatesIgnoresNow(t *testing.T) {
	p := NewParser(WithNaturalDates())

	_, ok := p.Extract("compare sleep now", day("2025-03-13"))
	assert.False(t, ok)
}

func TestTimeExpressionString(t *testing.T) {
	assert.Equal(t, "last_n_days(7)", LastNDays(7).String())
	assert.Equal(t, "single_date(2025-03-01)", SingleDate(day("2025-03-01")).String())
	assert.Equal(t, "explicit_range(2025-03-01, 2025-03-05)", ExplicitRange(day("2025-03-01"), day("2025-03-05")).String())
	assert.Equal(t, "invalid_date(2025-02-30)", InvalidDate("2025-02-30").String())
	assert.Equal(t, "invalid", TimeExpression{}.String())
}

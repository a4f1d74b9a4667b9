// ABOUTME: Rule-based workout and diet suggestions keyed on recovery score.
// ABOUTME: Used when the assistant is unreachable or for a quick offline answer.
package advice

import (
	"fmt"
	"strings"

	"github.com/harperreed/healthcoach/internal/models"
)

// Category buckets a recovery score.
type Category string

const (
	CategoryLow       Category = "low"
	CategoryMedium    Category = "medium"
	CategoryGood      Category = "good"
	CategoryExcellent Category = "excellent"
	CategoryUnknown   Category = "unknown"
)

// Upper bounds (exclusive) for each category. Anything at or above
// goodBelow is excellent.
const (
	lowBelow    = 40
	mediumBelow = 60
	goodBelow   = 80
)

var workouts = map[Category]string{
	CategoryLow: "Your recovery is low. Consider taking a rest day or doing light activities like " +
		"walking, stretching, or yoga. Focus on recovery and sleep.",
	CategoryMedium: "Your recovery is moderate. A moderate workout like a steady run, bike ride, " +
		"or strength training is fine, but avoid pushing too hard. Listen to your body.",
	CategoryGood: "Your recovery is good. You can engage in a more intense workout today, such as " +
		"HIIT, heavy strength training, or a long run. Stay hydrated and warm up properly.",
	CategoryExcellent: "Your recovery is excellent! This is a great day to challenge yourself with high-intensity " +
		"training, personal best attempts, or a new workout routine. Go for it!",
	CategoryUnknown: "Unable to determine recovery status. Please check your latest metrics. " +
		"In the meantime, a balanced workout is recommended.",
}

var diets = map[Category]string{
	CategoryLow: "Focus on anti-inflammatory foods: berries, fatty fish, nuts, and leafy greens. " +
		"Ensure adequate protein intake to support muscle repair, and stay well hydrated. " +
		"Consider increasing your intake of complex carbs for energy.",
	CategoryMedium: "Maintain a balanced diet with lean proteins, healthy fats, and complex carbs. " +
		"Include plenty of vegetables and fruits. Hydration is key; aim for 2-3 liters of water.",
	CategoryGood: "You're recovering well. Keep up with a balanced diet rich in whole foods. " +
		"You might benefit from a slightly higher carb intake to fuel your workouts. " +
		"Don't forget post-workout nutrition: protein and carbs within 30-60 minutes.",
	CategoryExcellent: "Your recovery is optimal. Continue with your current nutrition plan. " +
		"Consider timing your meals to maximize performance. Hydrate well and listen to your body.",
	CategoryUnknown: "A balanced diet with plenty of whole foods, lean protein, healthy fats, and " +
		"complex carbs is always a good choice. Stay hydrated.",
}

// Categorize buckets a recovery score. A nil score is unknown.
func Categorize(score *float64) Category {
	if score == nil {
		return CategoryUnknown
	}
	switch s := *score; {
	case s < lowBelow:
		return CategoryLow
	case s < mediumBelow:
		return CategoryMedium
	case s < goodBelow:
		return CategoryGood
	default:
		return CategoryExcellent
	}
}

// Workout suggests a workout for a recovery score.
func Workout(score *float64) string {
	return workouts[Categorize(score)]
}

// Diet suggests a diet for a recovery score.
func Diet(score *float64) string {
	return diets[Categorize(score)]
}

// Advice is the pair of suggestions for one day.
type Advice struct {
	Category Category
	Score    *float64
	Workout  string
	Diet     string
}

// For builds advice from a record's recovery score. A nil record yields the
// unknown category.
func For(r *models.DailyRecord) Advice {
	var score *float64
	if r != nil {
		score = r.Value(models.MetricRecoveryScore)
	}
	return Advice{
		Category: Categorize(score),
		Score:    score,
		Workout:  Workout(score),
		Diet:     Diet(score),
	}
}

// String renders the advice as plain text for the chat and CLI.
func (a Advice) String() string {
	var b strings.Builder
	if a.Score != nil {
		fmt.Fprintf(&b, "Recovery score: %.0f (%s)\n", *a.Score, a.Category)
	}
	fmt.Fprintf(&b, "Workout: %s\n", a.Workout)
	fmt.Fprintf(&b, "Diet: %s", a.Diet)
	return b.String()
}

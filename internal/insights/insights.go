// Package insights derives progress trends, behavioral patterns, and a
// short-horizon mood forecast from accumulated daily progress data. All of it
// is local arithmetic over the user's own history.
package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/luminacare/memory-lane/internal/types"
)

// TrendType is the direction of a metric over the observed window.
type TrendType string

const (
	TrendImproving TrendType = "improving"
	TrendDeclining TrendType = "declining"
	TrendStable    TrendType = "stable"
)

// Metric names a tracked progress series.
type Metric string

const (
	MetricQuizScore  Metric = "quiz_score"
	MetricEngagement Metric = "engagement_time"
	MetricSentiment  Metric = "sentiment_score"
)

// ProgressPoint is one day of observed progress.
type ProgressPoint struct {
	Date              time.Time `json:"date"`
	QuizScore         float64   `json:"quiz_score"`         // percent
	EngagementMinutes float64   `json:"engagement_minutes"` // minutes
	Sentiment         float64   `json:"sentiment"`          // [-1,1]
}

// TrendInsight describes one metric's direction with a confidence estimate.
type TrendInsight struct {
	Type           TrendType `json:"type"`
	Metric         Metric    `json:"metric"`
	Message        string    `json:"message"`
	Confidence     float64   `json:"confidence"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// PatternInsight describes a recurring behavioral pattern.
type PatternInsight struct {
	Pattern     string   `json:"pattern"` // weekly | daily
	Description string   `json:"description"`
	Days        []string `json:"days,omitempty"`
	Value       float64  `json:"value"`
}

// Report bundles everything the progress screen shows.
type Report struct {
	Trends          []TrendInsight   `json:"trends"`
	Patterns        []PatternInsight `json:"patterns"`
	Recommendations []string         `json:"recommendations"`
	Summary         string           `json:"summary"`
}

// Trend is the raw direction-plus-confidence result of series analysis.
type Trend struct {
	Type       TrendType
	Confidence float64
}

// TrendOf compares the mean of the first half of the series against the
// second. A change under 10% of the first-half mean counts as stable. Returns
// nil for fewer than three samples.
func TrendOf(values []float64) *Trend {
	if len(values) < 3 {
		return nil
	}

	mid := len(values) / 2
	firstAvg := mean(values[:mid])
	secondAvg := mean(values[mid:])

	diff := secondAvg - firstAvg
	threshold := math.Abs(firstAvg * 0.1)

	if math.Abs(diff) < threshold {
		return &Trend{Type: TrendStable, Confidence: 0.7}
	}

	confidence := math.Min(0.95, 0.5+math.Abs(diff)/math.Abs(firstAvg)*0.5)
	if diff > 0 {
		return &Trend{Type: TrendImproving, Confidence: confidence}
	}
	return &Trend{Type: TrendDeclining, Confidence: confidence}
}

// AnalyzeTrends computes trends for quiz score, engagement, and sentiment.
// Fewer than three points yields no trends.
func AnalyzeTrends(points []ProgressPoint) []TrendInsight {
	if len(points) < 3 {
		return nil
	}

	var trends []TrendInsight

	if t := TrendOf(series(points, func(p ProgressPoint) float64 { return p.QuizScore })); t != nil {
		insight := TrendInsight{
			Type:       t.Type,
			Metric:     MetricQuizScore,
			Message:    fmt.Sprintf("Your quiz scores are %s over the last %d days", verb(t.Type, "improving", "declining", "stable"), len(points)),
			Confidence: t.Confidence,
		}
		switch t.Type {
		case TrendDeclining:
			insight.Recommendation = "Try reviewing memories more regularly to boost quiz performance"
		case TrendImproving:
			insight.Recommendation = "Great job! Keep up the consistent practice"
		default:
			insight.Recommendation = "Maintain your current routine for best results"
		}
		trends = append(trends, insight)
	}

	if t := TrendOf(series(points, func(p ProgressPoint) float64 { return p.EngagementMinutes })); t != nil {
		insight := TrendInsight{
			Type:       t.Type,
			Metric:     MetricEngagement,
			Message:    fmt.Sprintf("Your engagement time is %s", verb(t.Type, "increasing", "decreasing", "stable")),
			Confidence: t.Confidence,
		}
		if t.Type == TrendDeclining {
			insight.Recommendation = "Try setting aside dedicated time each day for memory activities"
		}
		trends = append(trends, insight)
	}

	if t := TrendOf(series(points, func(p ProgressPoint) float64 { return p.Sentiment })); t != nil {
		insight := TrendInsight{
			Type:       t.Type,
			Metric:     MetricSentiment,
			Message:    fmt.Sprintf("Your mood sentiment shows a %s trend", verb(t.Type, "positive", "negative", "stable")),
			Confidence: t.Confidence,
		}
		if t.Type == TrendDeclining {
			insight.Recommendation = "Consider reviewing positive memories or speaking with a caregiver about your mood"
		}
		trends = append(trends, insight)
	}

	return trends
}

// DetectPatterns looks for a best weekday and a daily-consistency pattern.
// Needs at least a week of data.
func DetectPatterns(points []ProgressPoint) []PatternInsight {
	if len(points) < 7 {
		return nil
	}

	var patterns []PatternInsight
	if p := bestWeekday(points); p != nil {
		patterns = append(patterns, *p)
	}
	if p := dailyConsistency(points); p != nil {
		patterns = append(patterns, *p)
	}
	return patterns
}

func bestWeekday(points []ProgressPoint) *PatternInsight {
	byDay := make(map[string][]float64)
	for _, p := range points {
		day := p.Date.Weekday().String()
		byDay[day] = append(byDay[day], p.QuizScore)
	}

	var bestDay string
	var bestAvg float64
	for day, scores := range byDay {
		avg := mean(scores)
		if avg > bestAvg || (avg == bestAvg && bestDay != "" && day < bestDay) {
			bestAvg = avg
			bestDay = day
		}
	}
	if bestDay == "" {
		return nil
	}

	return &PatternInsight{
		Pattern:     "weekly",
		Description: fmt.Sprintf("You perform best on %ss with an average quiz score of %d%%", bestDay, int(math.Round(bestAvg))),
		Days:        []string{bestDay},
		Value:       bestAvg,
	}
}

func dailyConsistency(points []ProgressPoint) *PatternInsight {
	engaged := 0
	for _, p := range points {
		if p.EngagementMinutes > 10 {
			engaged++
		}
	}
	consistency := float64(engaged) / float64(len(points))
	if consistency <= 0.7 {
		return nil
	}

	return &PatternInsight{
		Pattern:     "daily",
		Description: fmt.Sprintf("You're engaging %d%% of days - excellent consistency!", int(math.Round(consistency*100))),
		Value:       consistency * 100,
	}
}

// GenerateReport assembles trends, patterns, recommendations, and a summary.
func GenerateReport(points []ProgressPoint) Report {
	trends := AnalyzeTrends(points)
	patterns := DetectPatterns(points)

	return Report{
		Trends:          trends,
		Patterns:        patterns,
		Recommendations: recommendations(trends, patterns, points),
		Summary:         summarize(trends),
	}
}

func recommendations(trends []TrendInsight, patterns []PatternInsight, points []ProgressPoint) []string {
	var recs []string

	declining := 0
	for _, t := range trends {
		if t.Type == TrendDeclining {
			declining++
		}
	}
	if declining > 0 {
		recs = append(recs,
			"Focus on activities that showed improvement in the past",
			"Consider setting a daily reminder for memory activities")
	}

	for _, p := range patterns {
		if p.Pattern == "weekly" && len(p.Days) > 0 {
			recs = append(recs, fmt.Sprintf("Schedule more intensive memory activities on %ss when you perform best", p.Days[0]))
			break
		}
	}

	if len(points) > 0 {
		avg := mean(series(points, func(p ProgressPoint) float64 { return p.EngagementMinutes }))
		if avg < 15 {
			recs = append(recs, "Try to spend at least 15-20 minutes daily with memory activities")
		} else if avg > 30 {
			recs = append(recs, "Great job on consistent engagement! Keep up the excellent work")
		}
	}

	return recs
}

func summarize(trends []TrendInsight) string {
	improving, declining := 0, 0
	for _, t := range trends {
		switch t.Type {
		case TrendImproving:
			improving++
		case TrendDeclining:
			declining++
		}
	}

	switch {
	case improving > declining && improving == 1:
		return "Your progress shows overall improvement with 1 metric trending upward. Keep up the great work!"
	case improving > declining:
		return fmt.Sprintf("Your progress shows overall improvement with %d metrics trending upward. Keep up the great work!", improving)
	case declining > improving:
		return "Your progress shows some areas that may need attention. Consider focusing on activities that boost your performance."
	default:
		return "Your progress is stable. Consistency is key - maintain your current routine for best results."
	}
}

// ForecastMood projects the recent valence series seven days forward. The
// projection extends the half-over-half trend linearly and decays confidence
// with horizon. With fewer than three samples every day is a low-confidence
// "moderate".
func ForecastMood(valences []float64, from time.Time) types.MoodForecast {
	forecast := types.MoodForecast{Next7Days: make([]types.MoodForecastPoint, 0, 7)}

	if len(valences) < 3 {
		for i := 1; i <= 7; i++ {
			forecast.Next7Days = append(forecast.Next7Days, types.MoodForecastPoint{
				Date:          from.AddDate(0, 0, i),
				PredictedMood: "moderate",
				Confidence:    0.3,
			})
		}
		return forecast
	}

	mid := len(valences) / 2
	firstAvg := mean(valences[:mid])
	secondAvg := mean(valences[mid:])
	slope := (secondAvg - firstAvg) / float64(len(valences)-mid)

	trend := TrendOf(valences)
	for i := 1; i <= 7; i++ {
		level := secondAvg + slope*float64(i)

		mood := "moderate"
		var intervention string
		switch {
		case level > 0.2:
			mood = "high"
		case level < -0.2:
			mood = "low"
			intervention = "Consider a relaxation session or a caregiver check-in"
		}

		confidence := math.Max(0.3, trend.Confidence-0.05*float64(i))
		forecast.Next7Days = append(forecast.Next7Days, types.MoodForecastPoint{
			Date:                  from.AddDate(0, 0, i),
			PredictedMood:         mood,
			Confidence:            confidence,
			SuggestedIntervention: intervention,
		})
	}

	return forecast
}

func series(points []ProgressPoint, f func(ProgressPoint) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = f(p)
	}
	return out
}

func verb(t TrendType, up, down, flat string) string {
	switch t {
	case TrendImproving:
		return up
	case TrendDeclining:
		return down
	}
	return flat
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

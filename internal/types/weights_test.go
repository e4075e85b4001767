package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestModelWeightsJSONRoundTrip(t *testing.T) {
	w := NewBaselineWeights(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	w.Emotion[0] = 0.125
	w.Emotion[99] = -3.5
	w.QuizPersonalization[7] = 42
	w.MemoryEmbedding[199] = 1e-6

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal weights: %v", err)
	}

	var got ModelWeights
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal weights: %v", err)
	}

	for _, task := range Tasks {
		want := w.TaskVector(task)
		have := got.TaskVector(task)
		if len(have) != len(want) {
			t.Fatalf("task %s: length %d after round trip, want %d", task, len(have), len(want))
		}
		for i := range want {
			if have[i] != want[i] {
				t.Fatalf("task %s index %d: got %v want %v", task, i, have[i], want[i])
			}
		}
	}
	if got.Version != w.Version {
		t.Fatalf("version %q after round trip, want %q", got.Version, w.Version)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	w := NewBaselineWeights(time.Now())
	c := w.Clone()
	c.Emotion[0] = 9

	if w.Emotion[0] != 0 {
		t.Fatal("mutating clone changed the original emotion vector")
	}
}

func TestNormalizeConsentDisablesDependentFlags(t *testing.T) {
	c := ConsentSettings{
		ShareAggregates:      true,
		CollectAudioFeatures: true,
		CaregiverView:        true,
	}
	n := c.Normalize()
	if n.ShareAggregates || n.CollectAudioFeatures {
		t.Fatalf("flags dependent on local training survived normalize: %+v", n)
	}
	if !n.CaregiverView {
		t.Fatal("caregiver view should not depend on local training")
	}
}

func TestTaskVectorCoversAllTasks(t *testing.T) {
	w := NewBaselineWeights(time.Now())
	wantLens := map[Task]int{
		TaskEmotion:                EmotionVectorLen,
		TaskQuizPersonalization:    QuizPersonalizationVectorLen,
		TaskActivityRecommendation: ActivityRecommendationVectorLen,
		TaskMoodForecast:           MoodForecastVectorLen,
		TaskSpeechTrend:            SpeechTrendVectorLen,
		TaskMemoryEmbedding:        MemoryEmbeddingVectorLen,
	}
	for _, task := range Tasks {
		if got := len(w.TaskVector(task)); got != wantLens[task] {
			t.Fatalf("task %s: baseline length %d, want %d", task, got, wantLens[task])
		}
	}
}

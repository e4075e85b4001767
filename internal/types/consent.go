package types

// ConsentSettings holds the user-controlled flags that gate every category of
// data collection and sharing. All flags default to false; the user must opt in.
type ConsentSettings struct {
	LocalTraining        bool `json:"local_training"`
	ShareAggregates      bool `json:"share_aggregates"`
	CaregiverView        bool `json:"caregiver_view"`
	CollectAudioFeatures bool `json:"collect_audio_features"`
	CollectContext       bool `json:"collect_context"`
}

// DefaultConsent returns the all-disabled opt-in baseline.
func DefaultConsent() ConsentSettings {
	return ConsentSettings{}
}

// Normalize treats ShareAggregates and CollectAudioFeatures as inactive when
// LocalTraining is off. Callers updating consent apply this before persisting.
func (c ConsentSettings) Normalize() ConsentSettings {
	if !c.LocalTraining {
		c.ShareAggregates = false
		c.CollectAudioFeatures = false
	}
	return c
}

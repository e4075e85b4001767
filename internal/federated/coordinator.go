// Package federated packages local weight changes for sharing and aggregates
// changes from multiple clients. Everything here is simulated: there is no
// transport, no secure aggregation, and the Laplace noise plus L2 clipping is
// a privacy-style transform, not a calibrated guarantee.
package federated

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/luminacare/memory-lane/internal/types"
)

// ShapeMismatchError reports two vectors for the same task with different
// lengths. Combining mismatched shapes is an integration bug and must fail
// loudly rather than truncate.
type ShapeMismatchError struct {
	Task types.Task
	LenA int
	LenB int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("weight shape mismatch for task %s: %d vs %d", e.Task, e.LenA, e.LenB)
}

// Coordinator prepares and aggregates federated updates for one client.
// Immutable; a consent change means constructing a new Coordinator.
type Coordinator struct {
	clientID string
	consent  types.ConsentSettings
	rng      *rand.Rand
	now      func() time.Time
}

// NewCoordinator returns a Coordinator bound to a client id and consent
// snapshot.
func NewCoordinator(clientID string, consent types.ConsentSettings) *Coordinator {
	return &Coordinator{
		clientID: clientID,
		consent:  consent,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// WithSeed makes the noise draws reproducible.
func (c *Coordinator) WithSeed(seed int64) *Coordinator {
	c.rng = rand.New(rand.NewSource(seed))
	return c
}

// WithClock overrides the coordinator clock.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// PrepareUpdate computes the per-task delta local-base, applies Laplace noise
// when differential privacy is enabled, and clips each delta's L2 norm.
// Returns nil without shareAggregates consent. Tasks present on only one side
// are skipped; a task present on both sides with different lengths is an
// error.
func (c *Coordinator) PrepareUpdate(base, local types.ModelWeights, sampleCount, round int, cfg types.TrainingConfig) (*types.FederatedUpdate, error) {
	if !c.consent.ShareAggregates {
		return nil, nil
	}

	clipNorm := 1.0
	var noiseScale float64
	dpEnabled := false
	if dp := cfg.DifferentialPrivacy; dp != nil {
		dpEnabled = dp.Enabled
		noiseScale = dp.NoiseScale
		if dp.ClipNorm > 0 {
			clipNorm = dp.ClipNorm
		}
	}

	deltas := make(map[types.Task]types.Vector)
	for _, task := range types.Tasks {
		baseVec := base.TaskVector(task)
		localVec := local.TaskVector(task)
		if baseVec == nil || localVec == nil {
			continue
		}
		if len(baseVec) != len(localVec) {
			return nil, &ShapeMismatchError{Task: task, LenA: len(baseVec), LenB: len(localVec)}
		}

		delta := make(types.Vector, len(localVec))
		for i := range delta {
			delta[i] = localVec[i] - baseVec[i]
		}
		if dpEnabled {
			for i := range delta {
				delta[i] += float32(c.laplaceNoise(noiseScale))
			}
		}
		clipL2(delta, clipNorm)
		deltas[task] = delta
	}

	return &types.FederatedUpdate{
		Deltas:      deltas,
		ClientID:    c.clientID,
		SampleCount: sampleCount,
		Round:       round,
		Timestamp:   c.now(),
	}, nil
}

// AggregateUpdates computes the sample-count-weighted average of the deltas,
// one vector per task. Returns nil for an empty list or zero total samples.
// Every update must cover the same task set with matching vector lengths.
func (c *Coordinator) AggregateUpdates(updates []types.FederatedUpdate) (*types.ModelWeights, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	totalSamples := 0
	for _, u := range updates {
		totalSamples += u.SampleCount
	}
	if totalSamples == 0 {
		return nil, nil
	}

	aggregated := types.ModelWeights{
		Version:   fmt.Sprintf("federated-%d", updates[0].Round),
		Timestamp: c.now(),
	}

	for task, first := range updates[0].Deltas {
		acc := make([]float64, len(first))
		for _, u := range updates {
			delta, ok := u.Deltas[task]
			if !ok {
				return nil, fmt.Errorf("update from client %s is missing task %s", u.ClientID, task)
			}
			if len(delta) != len(acc) {
				return nil, &ShapeMismatchError{Task: task, LenA: len(acc), LenB: len(delta)}
			}
			weight := float64(u.SampleCount) / float64(totalSamples)
			for i, v := range delta {
				acc[i] += float64(v) * weight
			}
		}

		vec := make(types.Vector, len(acc))
		for i, v := range acc {
			vec[i] = float32(v)
		}
		aggregated.SetTaskVector(task, vec)
	}

	return &aggregated, nil
}

// laplaceNoise draws from Laplace(0, scale) via the inverse CDF of a
// uniform(-0.5, 0.5) sample.
func (c *Coordinator) laplaceNoise(scale float64) float64 {
	u := c.rng.Float64() - 0.5
	return -scale * sign(u) * math.Log(1-2*math.Abs(u))
}

// clipL2 scales the vector down proportionally when its L2 norm exceeds
// clipNorm; otherwise it is left unchanged.
func clipL2(v types.Vector, clipNorm float64) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)

	if norm > clipNorm {
		scale := clipNorm / norm
		for i := range v {
			v[i] = float32(float64(v[i]) * scale)
		}
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

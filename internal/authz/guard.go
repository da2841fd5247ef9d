package authz

import (
	"context"
	"time"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/pkg/metrics"
)

// ActivityRecorder is the audit hook contract the interception layer writes
// through. Implementations must be fire-and-forget: a failed write never
// propagates back to the wrapped operation.
type ActivityRecorder interface {
	Record(actorID *uint, action, entityType string, entityID *uint, description string)
}

// PerformanceRecorder persists slow-call samples.
type PerformanceRecorder interface {
	Record(label string, durationMs int64)
}

// slowCallThreshold is the minimum duration a service call must exceed
// before a performance sample is persisted.
const slowCallThreshold = 1000 * time.Millisecond

// Guarded wraps op with an authorization check. On deny the operation never
// runs and a forbidden error carrying the missing capability is returned.
func Guarded[T any](ctx context.Context, e *Engine, p *auth.Principal, module, action string, op func() (T, error)) (T, error) {
	if err := e.Require(ctx, p, module, action); err != nil {
		var zero T
		return zero, err
	}
	return op()
}

// ActivitySpec declares how a wrapped operation is recorded. Description and
// entity-id extraction are caller-supplied closures over the typed result,
// so no runtime inspection of arbitrary values is needed.
type ActivitySpec[T any] struct {
	Action     string
	EntityType string

	// EntityID extracts the subject entity id from the result. Optional.
	EntityID func(result T) *uint

	// Describe builds the human-readable description from the result. Optional.
	Describe func(result T) string

	// LogOnError also records the activity when the operation fails. The
	// original failure always propagates unchanged either way.
	LogOnError bool
}

// WithActivityLog runs op and records an activity entry for it. Recording
// never alters the operation's own outcome: on success the result is
// returned after the (asynchronous) record call; on failure the error
// propagates untouched, with a record written only when LogOnError is set.
func WithActivityLog[T any](recorder ActivityRecorder, actorID *uint, spec ActivitySpec[T], op func() (T, error)) (T, error) {
	result, err := op()
	if err != nil {
		if spec.LogOnError && recorder != nil {
			recorder.Record(actorID, spec.Action, spec.EntityType, nil, spec.Action+" failed: "+err.Error())
		}
		return result, err
	}

	if recorder != nil {
		var entityID *uint
		if spec.EntityID != nil {
			entityID = spec.EntityID(result)
		}
		description := ""
		if spec.Describe != nil {
			description = spec.Describe(result)
		}
		recorder.Record(actorID, spec.Action, spec.EntityType, entityID, description)
	}

	return result, err
}

// WithTiming measures op's wall-clock duration and persists a performance
// sample when it exceeds the slow-call threshold. The result and error pass
// through unchanged.
func WithTiming[T any](recorder PerformanceRecorder, label string, op func() (T, error)) (T, error) {
	start := time.Now()
	result, err := op()

	if elapsed := time.Since(start); elapsed > slowCallThreshold {
		metrics.SlowServiceCalls.WithLabelValues(label).Inc()
		if recorder != nil {
			recorder.Record(label, elapsed.Milliseconds())
		}
	}

	return result, err
}

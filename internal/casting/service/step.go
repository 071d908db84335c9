package service

import (
	"casting_ops_backend/platform/logger"
)

// attempt runs a downstream step whose failure must not abort the workflow.
// On error the failure is logged with the step name and the zero value is
// returned with ok=false.
func attempt[T any](log *logger.Logger, step string, fn func() (T, error), attrs ...any) (T, bool) {
	v, err := fn()
	if err != nil {
		log.Step(step, err, attrs...)
		var zero T
		return zero, false
	}
	return v, true
}

// try is attempt for steps without a result.
func try(log *logger.Logger, step string, fn func() error, attrs ...any) bool {
	_, ok := attempt(log, step, func() (struct{}, error) { return struct{}{}, fn() }, attrs...)
	return ok
}

package handlers

import (
	"context"
	"time"

	"mercator-hq/courier/pkg/jsonvalue"
)

// Completer sends one prompt to the completion service. *upstream.Client
// implements it.
type Completer interface {
	Complete(ctx context.Context, prompt *jsonvalue.Value) (jsonvalue.Value, error)
}

// Recorder receives per-request measurements. *metrics.Collector
// implements it.
type Recorder interface {
	RecordRequest(statusCode int, duration time.Duration)
	RecordExtraction(source string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(int, time.Duration) {}
func (nopRecorder) RecordExtraction(string)          {}

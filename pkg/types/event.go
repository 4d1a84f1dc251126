// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage names the remote call a pipeline run is waiting on.
type Stage string

const (
	StageRasterize Stage = "rasterize"
	StageFullText  Stage = "full_text"
	StageCoreText  Stage = "core_text"
	StageTransform Stage = "transform"
)

// EventType represents the type of progress event.
type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is a progress notification emitted while a pipeline stage runs.
// For the transform stage Index and Total report "task Index of Total".
type Event struct {
	Type      EventType `json:"type"`
	Stage     Stage     `json:"stage"`
	Index     int       `json:"index,omitempty"`
	Total     int       `json:"total,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressFunc receives progress events. A nil ProgressFunc discards them.
type ProgressFunc func(Event)

// Emit calls f with ev when f is non-nil, stamping the event time.
func (f ProgressFunc) Emit(ev Event) {
	if f == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	f(ev)
}

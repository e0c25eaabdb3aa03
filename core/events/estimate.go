package events

import (
	"time"

	"github.com/kilianp07/carprice/core/model"
)

// Event is implemented by every bus event.
type Event interface {
	Kind() string
}

// EstimateEvent is published after a successful estimate.
type EstimateEvent struct {
	Estimate model.PriceEstimate
}

// Kind implements Event.
func (EstimateEvent) Kind() string { return "estimate" }

// RejectionEvent is published when a request is refused or fails.
type RejectionEvent struct {
	Vehicle model.Vehicle
	Reason  string
	Message string
	Time    time.Time
}

// Kind implements Event.
func (RejectionEvent) Kind() string { return "rejection" }

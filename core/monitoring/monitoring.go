// Package monitoring forwards unexpected failures to an error tracker.
// Rejected requests are expected outcomes and are never reported here.
package monitoring

import (
	"sync"
	"time"
)

// Reporter defines the error tracker operations used by the service.
type Reporter interface {
	CaptureError(err error, tags map[string]string)
	CapturePanic(v any, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) CaptureError(error, map[string]string) {}
func (NopReporter) CapturePanic(any, map[string]string)   {}
func (NopReporter) Flush(time.Duration) bool              { return true }

var (
	mu      sync.RWMutex
	current Reporter = NopReporter{}
)

// SetReporter installs the process wide reporter. nil restores the no-op one.
func SetReporter(r Reporter) {
	if r == nil {
		r = NopReporter{}
	}
	mu.Lock()
	current = r
	mu.Unlock()
}

func get() Reporter {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureError reports err with optional tags.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureError(err, tags)
}

// CapturePanic reports a recovered panic value.
func CapturePanic(v any, tags map[string]string) { get().CapturePanic(v, tags) }

// Flush waits up to timeout for buffered reports to be sent.
func Flush(timeout time.Duration) bool { return get().Flush(timeout) }

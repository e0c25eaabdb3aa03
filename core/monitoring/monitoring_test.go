package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	errs   []error
	panics []any
	tags   map[string]string
}

func (r *recorder) CaptureError(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = tags
}

func (r *recorder) CapturePanic(v any, tags map[string]string) {
	r.panics = append(r.panics, v)
	r.tags = tags
}

func (r *recorder) Flush(time.Duration) bool { return true }

func TestGlobalReporter(t *testing.T) {
	rec := &recorder{}
	SetReporter(rec)
	defer SetReporter(nil)

	CaptureError(nil, nil)
	CaptureError(errors.New("ensemble down"), map[string]string{"brand": "BMW"})
	CapturePanic("boom", map[string]string{"path": "/api/estimates"})

	assert.Len(t, rec.errs, 1)
	assert.Equal(t, []any{"boom"}, rec.panics)
	assert.Equal(t, "/api/estimates", rec.tags["path"])
	assert.True(t, Flush(time.Second))
}

func TestSetReporterNil(t *testing.T) {
	SetReporter(nil)
	assert.IsType(t, NopReporter{}, get())
	assert.NotPanics(t, func() { CaptureError(errors.New("x"), nil) })
}

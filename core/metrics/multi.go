package metrics

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEstimate forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordEstimate(ev EstimateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordEstimate(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRejection forwards rejections to sinks supporting them.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			if err := rec.RecordRejection(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEnsembleLatency forwards latency metrics when supported by the sink.
func (m *MultiSink) RecordEnsembleLatency(l EnsembleLatency) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EnsembleLatencyRecorder); ok {
			if err := rec.RecordEnsembleLatency(l); err != nil {
				return err
			}
		}
	}
	return nil
}

// Closer is implemented by sinks holding a connection.
type Closer interface {
	Close()
}

// Close closes every sink implementing Closer.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			c.Close()
		}
	}
}

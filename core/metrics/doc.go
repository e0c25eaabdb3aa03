// Package metrics defines the sinks that observe pricing activity. A sink
// must implement MetricsSink and may implement any of the optional recorder
// interfaces; callers type-assert before using them. Sinks are created from
// configuration through the registry, and NewMetricsSink fans out to several
// sinks with a MultiSink when more than one is configured.
package metrics

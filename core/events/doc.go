// Package events defines the events published on the internal bus when a
// pricing request completes. Subscribers such as the MQTT forwarder consume
// them asynchronously.
package events

// Package infra groups the adapters behind the pricing core: the forest
// model loader, metrics exporters, the MQTT publisher, Sentry reporting and
// the zerolog backed logger. Core packages never import from here.
package infra

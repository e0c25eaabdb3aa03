// Package catalog holds the process-wide reference data used to validate and
// price vehicles: the brand to model catalog, per-brand default specifications,
// the luxury brand set, input limits and the price cap table.
//
// A Catalog is built once at startup, either from the built-in tables
// (Default) or from a YAML file (Load), and is never mutated afterwards.
// Accessors return copies so callers cannot alter shared state.
package catalog

// Package types defines the shared vocabulary of the reliability audit:
// severity tiers, scoped levels and the Finding shapes produced by the
// analyzers. Renderers consume these types as-is and never recompute the
// statistics they carry.
package types

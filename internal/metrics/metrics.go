// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncSessionCreated()
	IncTokenIssued()
	IncTokenRevoked()

	// Auth cache metrics
	IncAuthCacheHit()
	IncAuthCacheMiss()

	// Catalog metrics
	IncRecipeCreated()
	IncRecipeUpdated()
	IncRecipeDeleted()
	IncTagCreated()
	IncIngredientCreated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

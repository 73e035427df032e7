package metrics

import (
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered    uint64
	SessionsCreated    uint64
	TokensIssued       uint64
	TokensRevoked      uint64
	AuthCacheHits      uint64
	AuthCacheMisses    uint64
	RecipesCreated     uint64
	RecipesUpdated     uint64
	RecipesDeleted     uint64
	TagsCreated        uint64
	IngredientsCreated uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered    uint64
	sessionsCreated    uint64
	tokensIssued       uint64
	tokensRevoked      uint64
	authCacheHits      uint64
	authCacheMisses    uint64
	recipesCreated     uint64
	recipesUpdated     uint64
	recipesDeleted     uint64
	tagsCreated        uint64
	ingredientsCreated uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:    atomic.LoadUint64(&m.usersRegistered),
		SessionsCreated:    atomic.LoadUint64(&m.sessionsCreated),
		TokensIssued:       atomic.LoadUint64(&m.tokensIssued),
		TokensRevoked:      atomic.LoadUint64(&m.tokensRevoked),
		AuthCacheHits:      atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:    atomic.LoadUint64(&m.authCacheMisses),
		RecipesCreated:     atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:     atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:     atomic.LoadUint64(&m.recipesDeleted),
		TagsCreated:        atomic.LoadUint64(&m.tagsCreated),
		IngredientsCreated: atomic.LoadUint64(&m.ingredientsCreated),
	}
}

// IncUserRegistered increments the registered user counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncSessionCreated increments the session counter.
func (m *InMemoryRecorder) IncSessionCreated() {
	atomic.AddUint64(&m.sessionsCreated, 1)
}

// IncTokenIssued increments the issued token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncTokenRevoked increments the revoked token counter.
func (m *InMemoryRecorder) IncTokenRevoked() {
	atomic.AddUint64(&m.tokensRevoked, 1)
}

// IncAuthCacheHit increments the auth cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the auth cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

// IncRecipeCreated increments the recipe created counter.
func (m *InMemoryRecorder) IncRecipeCreated() {
	atomic.AddUint64(&m.recipesCreated, 1)
}

// IncRecipeUpdated increments the recipe updated counter.
func (m *InMemoryRecorder) IncRecipeUpdated() {
	atomic.AddUint64(&m.recipesUpdated, 1)
}

// IncRecipeDeleted increments the recipe deleted counter.
func (m *InMemoryRecorder) IncRecipeDeleted() {
	atomic.AddUint64(&m.recipesDeleted, 1)
}

// IncTagCreated increments the tag created counter.
func (m *InMemoryRecorder) IncTagCreated() {
	atomic.AddUint64(&m.tagsCreated, 1)
}

// IncIngredientCreated increments the ingredient created counter.
func (m *InMemoryRecorder) IncIngredientCreated() {
	atomic.AddUint64(&m.ingredientsCreated, 1)
}

package bridge

import "github.com/nsyntych/roon-mpris/internal/roon"

// Projection is the engine-owned state for one active zone: the
// outward-facing player, the last zone snapshot, the core address used
// for artwork URLs, and the last position reported to the desktop.
type Projection struct {
	Player      Player
	Zone        roon.Zone
	BaseAddress string

	// LastPosition is the last position (microseconds) pushed to the
	// player; the seek classifier measures deviation against it.
	// Starts at zero when the zone appears.
	LastPosition int64
}

// Registry maps zone identifiers to their projections. It is the
// single source of truth for the one-projection-per-zone invariant.
// All access happens from the bridge's event loop; it is not safe for
// concurrent use.
type Registry struct {
	zones map[string]*Projection
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{zones: make(map[string]*Projection)}
}

// Upsert inserts or replaces the projection for a zone.
func (r *Registry) Upsert(zoneID string, p *Projection) {
	r.zones[zoneID] = p
}

// Get looks up a zone. Absence is a normal condition: events routinely
// arrive for zones that have already vanished.
func (r *Registry) Get(zoneID string) (*Projection, bool) {
	p, ok := r.zones[zoneID]
	return p, ok
}

// Remove drops a zone. Removing an unknown zone is a no-op.
func (r *Registry) Remove(zoneID string) {
	delete(r.zones, zoneID)
}

// Clear drops every zone, used on upstream disconnect.
func (r *Registry) Clear() {
	r.zones = make(map[string]*Projection)
}

// ForEach visits every projection. The callback must not mutate the
// registry.
func (r *Registry) ForEach(fn func(zoneID string, p *Projection)) {
	for id, p := range r.zones {
		fn(id, p)
	}
}

// Len reports the number of known zones.
func (r *Registry) Len() int {
	return len(r.zones)
}

// Package bridge is the zone-to-player synchronization engine: it
// projects Roon zone state onto per-zone MPRIS players and routes
// player commands back to the owning zone.
package bridge

// Metadata is the outward-facing track description pushed to a player.
// Well-known fields map to standard MPRIS/xesam keys; Extra carries
// vendor-prefixed keys that have no standard field.
type Metadata struct {
	TrackID string
	Length  int64 // microseconds
	Title   string
	Album   string
	Artists []string
	ArtURL  string
	Extra   map[string]any
}

// Capabilities are the per-zone control flags surfaced to the desktop.
type Capabilities struct {
	CanGoNext     bool
	CanGoPrevious bool
	CanPause      bool
	CanSeek       bool
}

// ControlHandlers receives inbound control events from a player. Nil
// handlers are treated as unsupported. Handlers may be invoked from
// the player's own goroutines and must not block.
type ControlHandlers struct {
	PlayPause func()
	Play      func()
	Pause     func()
	Stop      func()
	Next      func()
	Previous  func()

	// Seek receives a relative offset in microseconds.
	Seek func(offset int64)
	// SetPosition receives a track identity token and an absolute
	// position in microseconds.
	SetPosition func(trackID string, position int64)

	OpenURI    func(uri string)
	Raise      func()
	Quit       func()
	SetVolume  func(volume float64)
	SetLoop    func(status string)
	SetShuffle func(on bool)
}

// Player is one zone's outward-facing handle on the desktop interface.
type Player interface {
	SetMetadata(m Metadata)
	SetPlaybackStatus(status string)
	SetCapabilities(c Capabilities)
	SetPosition(micros int64)
	// Seeked updates the exposed position and emits the explicit
	// "seeked" notification that lets clients tell a jump from smooth
	// progress.
	Seeked(micros int64)
	// Close detaches the player from the desktop interface and
	// releases its underlying connection.
	Close() error
}

// PlayerHost allocates players. name is the namespaced identifier the
// player registers under; identity is the human-readable zone name.
type PlayerHost interface {
	CreatePlayer(name, identity string, handlers ControlHandlers) (Player, error)
}

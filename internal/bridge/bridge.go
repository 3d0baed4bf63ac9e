package bridge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nsyntych/roon-mpris/internal/roon"
)

// DefaultNamespace prefixes every player identifier so zones from this
// bridge are recognizable on the bus.
const DefaultNamespace = "roon"

// taskBuffer bounds the event queue. Batches arrive about once a
// second per zone, so this is generous.
const taskBuffer = 256

// Options configures a Bridge.
type Options struct {
	// Namespace prefixes player identifiers; defaults to "roon".
	Namespace string
	// ExpectedAdvance and MaxDeviation tune the seek classifier
	// (microseconds); zero means the default.
	ExpectedAdvance int64
	MaxDeviation    int64
	Log             zerolog.Logger
}

// Bridge owns the zone registry and runs the single event loop all
// registry mutation happens on. Upstream batches, inbound player
// commands and seek completions are posted as tasks and processed to
// completion, one at a time, so the registry needs no locking.
type Bridge struct {
	log        zerolog.Logger
	host       PlayerHost
	transport  Transport
	namespace  string
	classifier SeekClassifier
	zones      *Registry
	tasks      chan func()
}

// New builds a bridge around the given collaborators. Call Run to
// start processing events.
func New(host PlayerHost, transport Transport, opts Options) *Bridge {
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return &Bridge{
		log:        opts.Log,
		host:       host,
		transport:  transport,
		namespace:  ns,
		classifier: NewSeekClassifier(opts.ExpectedAdvance, opts.MaxDeviation),
		zones:      NewRegistry(),
		tasks:      make(chan func(), taskBuffer),
	}
}

// Run processes posted tasks until ctx is cancelled, then tears down
// every remaining player.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.clear()
			return ctx.Err()
		case task := <-b.tasks:
			b.runTask(task)
		}
	}
}

// runTask keeps a panicking handler from breaking the event loop.
func (b *Bridge) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("event handler panicked")
		}
	}()
	task()
}

// post queues a task for the event loop. If the queue is full the task
// is dropped with a warning; a subsequent zone update restores any
// state a dropped event would have carried.
func (b *Bridge) post(task func()) {
	select {
	case b.tasks <- task:
	default:
		b.log.Warn().Msg("event queue full, dropping event")
	}
}

// ZonesSubscribed implements roon.ZoneHandler. The initial full list
// is treated like an added batch; already-known zones are untouched.
func (b *Bridge) ZonesSubscribed(zones []roon.Zone) {
	addr := b.transport.BaseAddress()
	b.post(func() { b.handleZonesAdded(zones, addr) })
}

// ZonesAdded implements roon.ZoneHandler.
func (b *Bridge) ZonesAdded(zones []roon.Zone) {
	addr := b.transport.BaseAddress()
	b.post(func() { b.handleZonesAdded(zones, addr) })
}

// ZonesChanged implements roon.ZoneHandler.
func (b *Bridge) ZonesChanged(zones []roon.Zone) {
	b.post(func() { b.handleZonesChanged(zones) })
}

// ZonesRemoved implements roon.ZoneHandler.
func (b *Bridge) ZonesRemoved(zoneIDs []string) {
	b.post(func() { b.handleZonesRemoved(zoneIDs) })
}

// ZonesSeekChanged implements roon.ZoneHandler.
func (b *Bridge) ZonesSeekChanged(changes []roon.ZoneSeek) {
	b.post(func() { b.handleZonesSeekChanged(changes) })
}

// CoreLost implements roon.ZoneHandler. All local state is dropped;
// nothing upstream is cancelled because nothing upstream survives the
// connection.
func (b *Bridge) CoreLost(err error) {
	b.log.Warn().AnErr("cause", err).Msg("core connection lost")
	b.post(b.clear)
}

// handleZonesAdded allocates a player and projection for every zone
// not already known. Duplicate adds are no-ops, keeping the
// one-projection-per-zone invariant.
func (b *Bridge) handleZonesAdded(zones []roon.Zone, baseAddr string) {
	for i := range zones {
		z := zones[i]
		if _, ok := b.zones.Get(z.ZoneID); ok {
			continue
		}
		name := b.namespace + "_" + SanitizeName(z.DisplayName)
		player, err := b.host.CreatePlayer(name, z.DisplayName, b.handlersFor(z.ZoneID))
		if err != nil {
			b.log.Error().Err(err).Str("zone", z.ZoneID).Str("player", name).
				Msg("cannot create player for zone")
			continue
		}
		p := &Projection{Player: player, Zone: z, BaseAddress: baseAddr}
		b.zones.Upsert(z.ZoneID, p)
		// Project before anything can reach the player so it is never
		// controllable without status and capabilities.
		b.project(p)
		b.log.Info().Str("zone", z.ZoneID).Str("player", name).Msg("zone attached")
	}
}

// handleZonesChanged replaces the snapshot and re-projects. Changes
// for unknown zones are ignored; upstream should not send them, but
// the engine must not fail if it does.
func (b *Bridge) handleZonesChanged(zones []roon.Zone) {
	for i := range zones {
		z := zones[i]
		p, ok := b.zones.Get(z.ZoneID)
		if !ok {
			b.log.Debug().Str("zone", z.ZoneID).Msg("change for unknown zone")
			continue
		}
		p.Zone = z
		b.project(p)
	}
}

// handleZonesRemoved detaches and drops known zones; unknown
// identifiers are no-ops.
func (b *Bridge) handleZonesRemoved(zoneIDs []string) {
	for _, id := range zoneIDs {
		p, ok := b.zones.Get(id)
		if !ok {
			continue
		}
		if err := p.Player.Close(); err != nil {
			b.log.Warn().Err(err).Str("zone", id).Msg("player teardown failed")
		}
		b.zones.Remove(id)
		b.log.Info().Str("zone", id).Msg("zone detached")
	}
}

// handleZonesSeekChanged runs the classifier for each known zone and
// applies its side effects: the position is always pushed, and a jump
// additionally surfaces as an explicit seek.
func (b *Bridge) handleZonesSeekChanged(changes []roon.ZoneSeek) {
	for _, ch := range changes {
		p, ok := b.zones.Get(ch.ZoneID)
		if !ok {
			b.log.Debug().Str("zone", ch.ZoneID).Msg("seek report for unknown zone")
			continue
		}
		if ch.SeekPosition == nil {
			continue
		}
		position, seeked := b.classifier.Classify(p, *ch.SeekPosition)
		p.Player.SetPosition(position)
		if seeked {
			p.Player.Seeked(position)
		}
	}
}

// clear tears down every player and empties the registry.
func (b *Bridge) clear() {
	b.zones.ForEach(func(id string, p *Projection) {
		if err := p.Player.Close(); err != nil {
			b.log.Warn().Err(err).Str("zone", id).Msg("player teardown failed")
		}
	})
	b.zones.Clear()
}

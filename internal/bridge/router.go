package bridge

import "github.com/nsyntych/roon-mpris/internal/roon"

// handlersFor binds a zone's inbound control events to upstream
// actions. The closures run on the player's goroutines, so everything
// that touches the registry is posted onto the event loop.
func (b *Bridge) handlersFor(zoneID string) ControlHandlers {
	return ControlHandlers{
		PlayPause: func() { b.post(func() { b.control(zoneID, roon.ControlPlayPause) }) },
		Stop:      func() { b.post(func() { b.control(zoneID, roon.ControlStop) }) },
		Next:      func() { b.post(func() { b.control(zoneID, roon.ControlNext) }) },
		Previous:  func() { b.post(func() { b.control(zoneID, roon.ControlPrevious) }) },
		Seek: func(offset int64) {
			b.post(func() { b.relativeSeek(zoneID, offset) })
		},
		SetPosition: func(trackID string, position int64) {
			b.post(func() { b.absoluteSeek(zoneID, trackID, position) })
		},

		// The rest of the MPRIS surface is accepted but deliberately
		// not forwarded: zones own their volume and queue modes, and
		// quitting one player must not take down the whole bridge.
		Play:    func() { b.logIgnored(zoneID, "play") },
		Pause:   func() { b.logIgnored(zoneID, "pause") },
		OpenURI: func(uri string) { b.logIgnored(zoneID, "open uri "+uri) },
		Raise:   func() { b.logIgnored(zoneID, "raise") },
		Quit:    func() { b.logIgnored(zoneID, "quit") },
		SetVolume: func(float64) {
			b.logIgnored(zoneID, "set volume")
		},
		SetLoop: func(string) {
			b.logIgnored(zoneID, "set loop status")
		},
		SetShuffle: func(bool) {
			b.logIgnored(zoneID, "set shuffle")
		},
	}
}

func (b *Bridge) logIgnored(zoneID, what string) {
	b.log.Debug().Str("zone", zoneID).Str("event", what).Msg("unsupported player event ignored")
}

// control forwards a transport command for a known zone. A command
// arriving after the zone vanished is dropped.
func (b *Bridge) control(zoneID, action string) {
	if _, ok := b.zones.Get(zoneID); !ok {
		b.log.Debug().Str("zone", zoneID).Str("action", action).Msg("control for unknown zone")
		return
	}
	b.transport.Control(zoneID, action)
}

// relativeSeek translates an MPRIS offset (microseconds) into an
// upstream relative seek in seconds. On success the new absolute
// position is derived from the last known position plus the offset,
// floored at zero, and confirmed to the player.
func (b *Bridge) relativeSeek(zoneID string, offset int64) {
	p, ok := b.zones.Get(zoneID)
	if !ok {
		b.log.Debug().Str("zone", zoneID).Msg("seek for unknown zone")
		return
	}
	if !p.Zone.IsSeekAllowed {
		b.log.Debug().Str("zone", zoneID).Msg("relative seek dropped, zone does not allow seeking")
		return
	}
	seconds := int(offset / 1_000_000)
	b.transport.Seek(zoneID, roon.SeekRelative, seconds, func(err error) {
		b.post(func() {
			// Re-fetch: the zone may have changed or vanished while
			// the call was in flight.
			cur, ok := b.zones.Get(zoneID)
			if !ok {
				return
			}
			if err != nil {
				b.log.Warn().Err(err).Str("zone", zoneID).Msg("relative seek failed")
				return
			}
			position := cur.LastPosition + offset
			if position < 0 {
				position = 0
			}
			cur.Player.Seeked(position)
		})
	})
}

// absoluteSeek forwards an MPRIS SetPosition to an upstream absolute
// seek and confirms the exact requested position on success. The track
// identity accompanying the request is informational only; a stale one
// corrects itself on the next zone update.
func (b *Bridge) absoluteSeek(zoneID, trackID string, position int64) {
	p, ok := b.zones.Get(zoneID)
	if !ok {
		b.log.Debug().Str("zone", zoneID).Msg("set position for unknown zone")
		return
	}
	if !p.Zone.IsSeekAllowed {
		b.log.Debug().Str("zone", zoneID).Msg("absolute seek dropped, zone does not allow seeking")
		return
	}
	b.log.Debug().Str("zone", zoneID).Str("track", trackID).Int64("position", position).
		Msg("absolute seek requested")
	seconds := int(position / 1_000_000)
	b.transport.Seek(zoneID, roon.SeekAbsolute, seconds, func(err error) {
		b.post(func() {
			cur, ok := b.zones.Get(zoneID)
			if !ok {
				return
			}
			if err != nil {
				b.log.Warn().Err(err).Str("zone", zoneID).Msg("absolute seek failed")
				return
			}
			cur.Player.Seeked(position)
		})
	})
}

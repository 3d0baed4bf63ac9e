package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsyntych/roon-mpris/internal/roon"
)

func TestRouter_ControlsForwardToOwningZone(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	handlers := host.players[0].handlers

	handlers.PlayPause()
	handlers.Stop()
	handlers.Next()
	handlers.Previous()
	b.drainTasks()

	require.Len(t, transport.controls, 4)
	assert.Equal(t, controlCall{zoneID: "z1", action: "playpause"}, transport.controls[0])
	assert.Equal(t, controlCall{zoneID: "z1", action: "stop"}, transport.controls[1])
	assert.Equal(t, controlCall{zoneID: "z1", action: "next"}, transport.controls[2])
	assert.Equal(t, controlCall{zoneID: "z1", action: "previous"}, transport.controls[3])
}

func TestRouter_ControlAfterZoneVanished(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	handlers := host.players[0].handlers
	b.handleZonesRemoved([]string{"z1"})

	handlers.PlayPause()
	b.drainTasks()

	assert.Empty(t, transport.controls)
}

func TestRouter_RelativeSeek(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	p := host.players[0]

	proj, _ := b.zones.Get("z1")
	proj.LastPosition = 30_000_000

	p.handlers.Seek(10_000_000)
	b.drainTasks()

	require.Len(t, transport.seeks, 1)
	assert.Equal(t, "z1", transport.seeks[0].zoneID)
	assert.Equal(t, roon.SeekRelative, transport.seeks[0].how)
	assert.Equal(t, 10, transport.seeks[0].seconds)

	// Upstream confirms: new absolute position is last known + offset.
	transport.seeks[0].done(nil)
	b.drainTasks()
	require.Len(t, p.seeked, 1)
	assert.Equal(t, int64(40_000_000), p.seeked[0])
}

func TestRouter_RelativeSeekFlooredAtZero(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	p := host.players[0]

	proj, _ := b.zones.Get("z1")
	proj.LastPosition = 5_000_000

	p.handlers.Seek(-20_000_000)
	b.drainTasks()
	require.Len(t, transport.seeks, 1)
	assert.Equal(t, -20, transport.seeks[0].seconds)

	transport.seeks[0].done(nil)
	b.drainTasks()
	require.Len(t, p.seeked, 1)
	assert.Equal(t, int64(0), p.seeked[0])
}

func TestRouter_SeekDisallowedNeverReachesUpstream(t *testing.T) {
	b, host, transport := newTestBridge()
	z := livingRoomZone()
	z.IsSeekAllowed = false
	b.handleZonesAdded([]roon.Zone{z}, transport.base)
	p := host.players[0]

	p.handlers.Seek(10_000_000)
	p.handlers.SetPosition("/some/track", 60_000_000)
	b.drainTasks()

	assert.Empty(t, transport.seeks)
}

func TestRouter_SeekFailureLeavesStateAlone(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	p := host.players[0]

	p.handlers.Seek(10_000_000)
	b.drainTasks()
	require.Len(t, transport.seeks, 1)

	transport.seeks[0].done(errors.New("core said no"))
	b.drainTasks()

	assert.Empty(t, p.seeked)
}

func TestRouter_SeekCompletionAfterZoneRemoved(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	p := host.players[0]

	p.handlers.Seek(10_000_000)
	b.drainTasks()
	require.Len(t, transport.seeks, 1)

	// Zone vanishes while the call is in flight; the completion must
	// re-fetch and become a silent no-op.
	b.handleZonesRemoved([]string{"z1"})
	transport.seeks[0].done(nil)
	b.drainTasks()

	assert.Empty(t, p.seeked)
}

func TestRouter_AbsoluteSeek(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	p := host.players[0]

	p.handlers.SetPosition("/org/mpris/MediaPlayer2/Track/z1/00000001", 120_000_000)
	b.drainTasks()

	require.Len(t, transport.seeks, 1)
	assert.Equal(t, roon.SeekAbsolute, transport.seeks[0].how)
	assert.Equal(t, 120, transport.seeks[0].seconds)

	transport.seeks[0].done(nil)
	b.drainTasks()
	require.Len(t, p.seeked, 1)
	assert.Equal(t, int64(120_000_000), p.seeked[0])
}

func TestRouter_UnsupportedEventsAreAcceptedQuietly(t *testing.T) {
	b, host, transport := newTestBridge()
	b.handleZonesAdded([]roon.Zone{livingRoomZone()}, transport.base)
	handlers := host.players[0].handlers

	handlers.Play()
	handlers.Pause()
	handlers.OpenURI("spotify:track:xyz")
	handlers.Raise()
	handlers.Quit()
	handlers.SetVolume(0.5)
	handlers.SetLoop("Playlist")
	handlers.SetShuffle(true)
	b.drainTasks()

	assert.Empty(t, transport.controls)
	assert.Empty(t, transport.seeks)
	assert.Equal(t, 1, b.zones.Len(), "quit must not tear anything down")
}

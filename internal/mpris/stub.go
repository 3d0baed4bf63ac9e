//go:build !linux

package mpris

import (
	"github.com/rs/zerolog"

	"github.com/nsyntych/roon-mpris/internal/bridge"
)

// Host is a no-op on non-Linux platforms.
type Host struct{}

// NewHost returns a no-op host on non-Linux platforms.
func NewHost(_ zerolog.Logger) *Host {
	return &Host{}
}

// CreatePlayer returns a no-op player on non-Linux platforms.
func (h *Host) CreatePlayer(_, _ string, _ bridge.ControlHandlers) (bridge.Player, error) {
	return &Player{}, nil
}

// Player is a no-op on non-Linux platforms.
type Player struct{}

func (p *Player) SetMetadata(bridge.Metadata) {}
func (p *Player) SetPlaybackStatus(string) {}
func (p *Player) SetCapabilities(bridge.Capabilities) {}
func (p *Player) SetPosition(int64) {}
func (p *Player) Seeked(int64) {}
func (p *Player) Close() error { return nil }

//go:build linux

// Package mpris exposes bridge players as org.mpris.MediaPlayer2
// instances on the D-Bus session bus. Every player owns its own bus
// name on its own private connection, so one process can present many
// players at once.
package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rs/zerolog"

	"github.com/nsyntych/roon-mpris/internal/bridge"
)

const (
	busPrefix       = "org.mpris.MediaPlayer2."
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
)

// Host creates D-Bus backed players.
type Host struct {
	log zerolog.Logger
}

// NewHost returns a Host that places players on the session bus.
func NewHost(log zerolog.Logger) *Host {
	return &Host{log: log}
}

// CreatePlayer opens a private session bus connection, exports the
// MediaPlayer2 object tree on it and claims busPrefix+name. The name
// is claimed last, so clients never observe a half-exported player.
func (h *Host) CreatePlayer(name, identity string, handlers bridge.ControlHandlers) (bridge.Player, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	p := &Player{
		conn:     conn,
		busName:  busPrefix + name,
		handlers: handlers,
		log:      h.log.With().Str("player", name).Logger(),
	}
	if err := p.export(identity); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(p.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", p.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("name %s already taken", p.busName)
	}

	p.log.Debug().Str("bus_name", p.busName).Msg("player registered")
	return p, nil
}

// Player is one exported MediaPlayer2 instance.
type Player struct {
	conn     *dbus.Conn
	props    *prop.Properties
	busName  string
	handlers bridge.ControlHandlers
	log      zerolog.Logger
}

func (p *Player) export(identity string) error {
	root := &rootObject{p: p}
	player := &playerObject{p: p}

	spec := map[string]map[string]*prop.Prop{
		rootInterface: {
			"CanQuit":             constProp(true),
			"CanRaise":            constProp(false),
			"HasTrackList":        constProp(false),
			"Identity":            constProp(identity),
			"SupportedUriSchemes": constProp([]string{}),
			"SupportedMimeTypes":  constProp([]string{}),
		},
		playerInterface: {
			"PlaybackStatus": constProp("Stopped"),
			"Metadata":       constProp(metadataMap(bridge.Metadata{})),
			// Position never signals changes; clients poll it and rely
			// on the Seeked signal for jumps.
			"Position":      {Value: int64(0), Emit: prop.EmitFalse},
			"Rate":          {Value: 1.0, Writable: true, Emit: prop.EmitTrue, Callback: ignoreChange},
			"MinimumRate":   constProp(1.0),
			"MaximumRate":   constProp(1.0),
			"Volume":        {Value: 1.0, Writable: true, Emit: prop.EmitTrue, Callback: p.onVolume},
			"LoopStatus":    {Value: "None", Writable: true, Emit: prop.EmitTrue, Callback: p.onLoop},
			"Shuffle":       {Value: false, Writable: true, Emit: prop.EmitTrue, Callback: p.onShuffle},
			"CanGoNext":     constProp(false),
			"CanGoPrevious": constProp(false),
			"CanPlay":       constProp(true),
			"CanPause":      constProp(false),
			"CanSeek":       constProp(false),
			"CanControl":    constProp(true),
		},
	}

	props, err := prop.Export(p.conn, objectPath, spec)
	if err != nil {
		return fmt.Errorf("export properties: %w", err)
	}
	p.props = props

	if err := p.conn.Export(root, objectPath, rootInterface); err != nil {
		return fmt.Errorf("export root interface: %w", err)
	}
	if err := p.conn.Export(player, objectPath, playerInterface); err != nil {
		return fmt.Errorf("export player interface: %w", err)
	}

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       rootInterface,
				Methods:    introspect.Methods(root),
				Properties: props.Introspection(rootInterface),
			},
			{
				Name:    playerInterface,
				Methods: introspect.Methods(player),
				Signals: []introspect.Signal{{
					Name: "Seeked",
					Args: []introspect.Arg{{Name: "Position", Type: "x"}},
				}},
				Properties: props.Introspection(playerInterface),
			},
		},
	}
	err = p.conn.Export(introspect.NewIntrospectable(node), objectPath,
		"org.freedesktop.DBus.Introspectable")
	if err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}
	return nil
}

// SetMetadata replaces the exposed track metadata.
func (p *Player) SetMetadata(m bridge.Metadata) {
	p.props.SetMust(playerInterface, "Metadata", metadataMap(m))
}

// SetPlaybackStatus updates the exposed playback status.
func (p *Player) SetPlaybackStatus(status string) {
	p.props.SetMust(playerInterface, "PlaybackStatus", status)
}

// SetCapabilities updates the per-track control flags. CanPlay and
// CanControl are pinned and never toggled.
func (p *Player) SetCapabilities(c bridge.Capabilities) {
	p.props.SetMust(playerInterface, "CanGoNext", c.CanGoNext)
	p.props.SetMust(playerInterface, "CanGoPrevious", c.CanGoPrevious)
	p.props.SetMust(playerInterface, "CanPause", c.CanPause)
	p.props.SetMust(playerInterface, "CanSeek", c.CanSeek)
}

// SetPosition updates the exposed position without signalling.
func (p *Player) SetPosition(micros int64) {
	p.props.SetMust(playerInterface, "Position", micros)
}

// Seeked updates the position and emits the Seeked signal so clients
// can tell a jump from smooth progress.
func (p *Player) Seeked(micros int64) {
	p.SetPosition(micros)
	if err := p.conn.Emit(objectPath, playerInterface+".Seeked", micros); err != nil {
		p.log.Warn().Err(err).Msg("cannot emit Seeked")
	}
}

// Close releases the bus name and drops the connection, removing the
// player from the desktop.
func (p *Player) Close() error {
	if _, err := p.conn.ReleaseName(p.busName); err != nil {
		p.log.Warn().Err(err).Msg("cannot release bus name")
	}
	return p.conn.Close()
}

func (p *Player) onVolume(c *prop.Change) *dbus.Error {
	if v, ok := c.Value.(float64); ok && p.handlers.SetVolume != nil {
		p.handlers.SetVolume(v)
	}
	return nil
}

func (p *Player) onLoop(c *prop.Change) *dbus.Error {
	if v, ok := c.Value.(string); ok && p.handlers.SetLoop != nil {
		p.handlers.SetLoop(v)
	}
	return nil
}

func (p *Player) onShuffle(c *prop.Change) *dbus.Error {
	if v, ok := c.Value.(bool); ok && p.handlers.SetShuffle != nil {
		p.handlers.SetShuffle(v)
	}
	return nil
}

func constProp(v any) *prop.Prop {
	return &prop.Prop{Value: v, Emit: prop.EmitTrue}
}

func ignoreChange(*prop.Change) *dbus.Error { return nil }

// rootObject serves the org.mpris.MediaPlayer2 methods.
type rootObject struct {
	p *Player
}

func (r *rootObject) Raise() *dbus.Error {
	if r.p.handlers.Raise != nil {
		r.p.handlers.Raise()
	}
	return nil
}

func (r *rootObject) Quit() *dbus.Error {
	if r.p.handlers.Quit != nil {
		r.p.handlers.Quit()
	}
	return nil
}

// playerObject serves the org.mpris.MediaPlayer2.Player methods.
type playerObject struct {
	p *Player
}

func (o *playerObject) Next() *dbus.Error {
	if o.p.handlers.Next != nil {
		o.p.handlers.Next()
	}
	return nil
}

func (o *playerObject) Previous() *dbus.Error {
	if o.p.handlers.Previous != nil {
		o.p.handlers.Previous()
	}
	return nil
}

func (o *playerObject) Pause() *dbus.Error {
	if o.p.handlers.Pause != nil {
		o.p.handlers.Pause()
	}
	return nil
}

func (o *playerObject) PlayPause() *dbus.Error {
	if o.p.handlers.PlayPause != nil {
		o.p.handlers.PlayPause()
	}
	return nil
}

func (o *playerObject) Stop() *dbus.Error {
	if o.p.handlers.Stop != nil {
		o.p.handlers.Stop()
	}
	return nil
}

func (o *playerObject) Play() *dbus.Error {
	if o.p.handlers.Play != nil {
		o.p.handlers.Play()
	}
	return nil
}

func (o *playerObject) Seek(offset int64) *dbus.Error {
	if o.p.handlers.Seek != nil {
		o.p.handlers.Seek(offset)
	}
	return nil
}

func (o *playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	if o.p.handlers.SetPosition != nil {
		o.p.handlers.SetPosition(string(trackID), position)
	}
	return nil
}

//nolint:revive // Method name required by the D-Bus interface.
func (o *playerObject) OpenUri(uri string) *dbus.Error {
	if o.p.handlers.OpenURI != nil {
		o.p.handlers.OpenURI(uri)
	}
	return nil
}

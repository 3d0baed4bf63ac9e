package roon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	registryService  = "com.roonlabs.registry:1"
	transportService = "com.roonlabs.transport:2"
	pingService      = "com.roonlabs.ping:1"
)

// ErrCoreLost reports that the connection went away while a call was
// in flight.
var ErrCoreLost = errors.New("connection to core lost")

// ExtensionInfo identifies this extension during registration.
type ExtensionInfo struct {
	ExtensionID    string `json:"extension_id"`
	DisplayName    string `json:"display_name"`
	DisplayVersion string `json:"display_version"`
	Publisher      string `json:"publisher"`
	Email          string `json:"email"`
	Website        string `json:"website,omitempty"`
}

// Client is one websocket connection to a Roon core. Replies are
// correlated to requests by Request-Id; subscription continuations are
// dispatched sequentially from the read loop.
type Client struct {
	log  zerolog.Logger
	conn *websocket.Conn
	addr string

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]pendingReply
	handler ZoneHandler

	done     chan struct{}
	lostOnce sync.Once
}

type pendingReply struct {
	fn func(*message)
	// persistent replies (subscriptions) survive their first
	// continuation.
	persistent bool
}

// Dial connects to the core's websocket API at addr (host:port).
func Dial(ctx context.Context, addr string, log zerolog.Logger) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/api"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial core at %s: %w", addr, err)
	}

	c := &Client{
		log:     log,
		conn:    conn,
		addr:    addr,
		pending: make(map[int]pendingReply),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// BaseAddress is the connected core's host:port.
func (c *Client) BaseAddress() string { return c.addr }

// Done is closed once the connection is gone, whether closed locally
// or lost.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close drops the connection. Pending calls complete with ErrCoreLost.
func (c *Client) Close() error {
	return c.conn.Close()
}

// send assigns a request id, registers the reply handler and writes
// the frame.
func (c *Client) send(name string, body any, reply pendingReply) error {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	if reply.fn != nil {
		c.pending[id] = reply
	}
	c.mu.Unlock()

	msg, err := newRequest(id, name, body)
	if err != nil {
		c.dropPending(id)
		return err
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.BinaryMessage, msg.encode())
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(id)
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}

func (c *Client) dropPending(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop parses incoming frames and dispatches them until the
// connection dies.
func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		msg, err := parseMessage(data)
		if err != nil {
			c.log.Warn().Err(err).Msg("unparseable frame from core")
			continue
		}

		if msg.Verb == verbRequest {
			c.handleCoreRequest(msg)
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		if ok && !reply.persistent {
			delete(c.pending, msg.RequestID)
		}
		c.mu.Unlock()
		if !ok {
			c.log.Debug().Int("request", msg.RequestID).Str("name", msg.Name).
				Msg("reply without matching request")
			continue
		}
		reply.fn(msg)
	}
}

// handleCoreRequest answers requests the core sends us. Only ping
// matters; anything else is acknowledged so the core does not wait.
func (c *Client) handleCoreRequest(msg *message) {
	if msg.Name != pingService+"/ping" {
		c.log.Debug().Str("name", msg.Name).Msg("unexpected request from core")
	}
	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, newReply(msg.RequestID, "Success").encode())
	c.writeMu.Unlock()
	if err != nil {
		c.log.Warn().Err(err).Msg("cannot answer core request")
	}
}

// fail tears the client down exactly once: pending calls are completed
// with a nil message, the zone handler hears CoreLost, and Done
// closes.
func (c *Client) fail(err error) {
	c.lostOnce.Do(func() {
		c.mu.Lock()
		pending := c.pending
		c.pending = make(map[int]pendingReply)
		handler := c.handler
		c.mu.Unlock()

		for _, reply := range pending {
			if !reply.persistent {
				reply.fn(nil)
			}
		}
		if handler != nil {
			handler.CoreLost(err)
		}
		close(c.done)
	})
}

// Register runs the registry handshake: an info request followed by
// register, replaying the token from the previous pairing if there is
// one. It returns the (possibly renewed) token.
func (c *Client) Register(ctx context.Context, info ExtensionInfo, token string) (string, error) {
	if err := c.send(registryService+"/info", nil, pendingReply{fn: func(m *message) {
		if m == nil {
			return
		}
		c.log.Debug().Str("status", m.Name).Msg("registry info answered")
	}}); err != nil {
		return "", err
	}

	body := map[string]any{
		"extension_id":      info.ExtensionID,
		"display_name":      info.DisplayName,
		"display_version":   info.DisplayVersion,
		"publisher":         info.Publisher,
		"email":             info.Email,
		"required_services": []string{transportService},
		"optional_services": []string{},
		"provided_services": []string{},
	}
	if info.Website != "" {
		body["website"] = info.Website
	}
	if token != "" {
		body["token"] = token
	}

	type result struct {
		token string
		err   error
	}
	resultCh := make(chan result, 1)
	deliver := func(r result) {
		select {
		case resultCh <- r:
		default:
			// Cores re-announce registration; only the first matters.
		}
	}

	// Registration stays open: the core re-sends Registered when its
	// state changes, so the reply is persistent.
	err := c.send(registryService+"/register", body, pendingReply{
		persistent: true,
		fn: func(m *message) {
			if m == nil {
				deliver(result{err: ErrCoreLost})
				return
			}
			switch m.Name {
			case "Registered":
				var payload struct {
					Token string `json:"token"`
				}
				if err := m.unmarshal(&payload); err != nil {
					deliver(result{err: err})
					return
				}
				deliver(result{token: payload.Token})
			default:
				deliver(result{err: fmt.Errorf("registration rejected: %s", m.Name)})
			}
		},
	})
	if err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrCoreLost
	case r := <-resultCh:
		return r.token, r.err
	}
}

// SubscribeZones starts the transport zone subscription. Events are
// delivered to h from the read loop, one batch at a time.
func (c *Client) SubscribeZones(h ZoneHandler) error {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()

	body := map[string]any{"subscription_key": 0}
	return c.send(transportService+"/subscribe_zones", body, pendingReply{
		persistent: true,
		fn:         func(m *message) { c.dispatchZoneEvent(h, m) },
	})
}

func (c *Client) dispatchZoneEvent(h ZoneHandler, m *message) {
	if m == nil {
		return
	}
	switch m.Name {
	case "Subscribed":
		var payload subscribedPayload
		if err := m.unmarshal(&payload); err != nil {
			c.log.Warn().Err(err).Msg("bad zone subscription payload")
			return
		}
		h.ZonesSubscribed(payload.Zones)
	case "Changed":
		var payload changedPayload
		if err := m.unmarshal(&payload); err != nil {
			c.log.Warn().Err(err).Msg("bad zone change payload")
			return
		}
		if len(payload.ZonesAdded) > 0 {
			h.ZonesAdded(payload.ZonesAdded)
		}
		if len(payload.ZonesChanged) > 0 {
			h.ZonesChanged(payload.ZonesChanged)
		}
		if len(payload.ZonesRemoved) > 0 {
			h.ZonesRemoved(payload.ZonesRemoved)
		}
		if len(payload.ZonesSeekChanged) > 0 {
			h.ZonesSeekChanged(payload.ZonesSeekChanged)
		}
	case "Unsubscribed":
		// Normal teardown acknowledgement.
	default:
		c.log.Debug().Str("name", m.Name).Msg("unhandled zone subscription event")
	}
}

// Control issues a transport command. Failures are logged with zone
// context; there is no retry and no rollback.
func (c *Client) Control(zoneID, action string) {
	body := map[string]string{"zone_or_output_id": zoneID, "control": action}
	err := c.send(transportService+"/control", body, pendingReply{fn: func(m *message) {
		if m == nil {
			return
		}
		if m.Name != "Success" {
			c.log.Warn().Str("zone", zoneID).Str("action", action).Str("status", m.Name).
				Msg("control rejected by core")
		}
	}})
	if err != nil {
		c.log.Warn().Err(err).Str("zone", zoneID).Str("action", action).Msg("control send failed")
	}
}

// Seek issues a relative or absolute seek in seconds. done, if
// non-nil, receives the upstream result from the read loop.
func (c *Client) Seek(zoneID, how string, seconds int, done func(error)) {
	body := map[string]any{"zone_or_output_id": zoneID, "how": how, "seconds": seconds}
	err := c.send(transportService+"/seek", body, pendingReply{fn: func(m *message) {
		if done == nil {
			return
		}
		switch {
		case m == nil:
			done(ErrCoreLost)
		case m.Name == "Success":
			done(nil)
		default:
			done(fmt.Errorf("seek rejected: %s", m.Name))
		}
	}})
	if err != nil && done != nil {
		done(err)
	}
}

// PauseAll pauses every zone that can pause, for the process-level
// pause-all control surface. It waits for the initial zone list, fans
// out pause commands and reports the first upstream failure.
func (c *Client) PauseAll(ctx context.Context) error {
	zonesCh := make(chan []Zone, 1)
	err := c.send(transportService+"/subscribe_zones",
		map[string]any{"subscription_key": 1},
		pendingReply{persistent: true, fn: func(m *message) {
			if m == nil || m.Name != "Subscribed" {
				return
			}
			var payload subscribedPayload
			if err := m.unmarshal(&payload); err != nil {
				return
			}
			select {
			case zonesCh <- payload.Zones:
			default:
			}
		}})
	if err != nil {
		return err
	}

	var zones []Zone
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrCoreLost
	case zones = <-zonesCh:
	}

	errCh := make(chan error, len(zones))
	waiting := 0
	for _, z := range zones {
		if !z.IsPauseAllowed {
			continue
		}
		waiting++
		zone := z.ZoneID
		body := map[string]string{"zone_or_output_id": zone, "control": ControlPause}
		err := c.send(transportService+"/control", body, pendingReply{fn: func(m *message) {
			switch {
			case m == nil:
				errCh <- ErrCoreLost
			case m.Name == "Success":
				errCh <- nil
			default:
				errCh <- fmt.Errorf("pause zone %s: %s", zone, m.Name)
			}
		}})
		if err != nil {
			errCh <- err
		}
	}

	var firstErr error
	for ; waiting > 0; waiting-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

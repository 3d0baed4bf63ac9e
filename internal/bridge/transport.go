package bridge

// Transport is the upstream control surface the router forwards player
// commands to. Calls are asynchronous and must never block the event
// loop; results arrive on completion callbacks.
type Transport interface {
	// Control issues a transport command ("playpause", "stop", "next",
	// "previous", ...) against the zone. Failures are the transport's
	// to log; there is no retry and no rollback.
	Control(zoneID, action string)

	// Seek issues a seek in seconds. how is "relative" or "absolute".
	// done, if non-nil, receives the upstream result; it may be called
	// from any goroutine.
	Seek(zoneID, how string, seconds int, done func(error))

	// BaseAddress is the connected core's host:port, used to build
	// artwork URLs.
	BaseAddress() string
}

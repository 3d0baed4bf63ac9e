package bridge

import "sync"

// fakePlayer records everything the engine pushes at it.
type fakePlayer struct {
	mu       sync.Mutex
	name     string
	identity string
	handlers ControlHandlers

	metadata  []Metadata
	statuses  []string
	caps      []Capabilities
	positions []int64
	seeked    []int64
	closed    bool
}

func (f *fakePlayer) SetMetadata(m Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = append(f.metadata, m)
}

func (f *fakePlayer) SetPlaybackStatus(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakePlayer) SetCapabilities(c Capabilities) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caps = append(f.caps, c)
}

func (f *fakePlayer) SetPosition(micros int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions = append(f.positions, micros)
}

func (f *fakePlayer) Seeked(micros int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeked = append(f.seeked, micros)
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePlayer) lastMetadata() Metadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.metadata) == 0 {
		return Metadata{}
	}
	return f.metadata[len(f.metadata)-1]
}

// fakeHost hands out fake players and remembers them by name.
type fakeHost struct {
	mu      sync.Mutex
	players []*fakePlayer
}

func (h *fakeHost) CreatePlayer(name, identity string, handlers ControlHandlers) (Player, error) {
	p := &fakePlayer{name: name, identity: identity, handlers: handlers}
	h.mu.Lock()
	h.players = append(h.players, p)
	h.mu.Unlock()
	return p, nil
}

func (h *fakeHost) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.players)
}

type controlCall struct {
	zoneID string
	action string
}

type seekCall struct {
	zoneID  string
	how     string
	seconds int
	done    func(error)
}

// fakeTransport records outbound calls; completions are fired by the
// test when it wants to simulate the upstream result.
type fakeTransport struct {
	base     string
	controls []controlCall
	seeks    []seekCall
}

func (t *fakeTransport) Control(zoneID, action string) {
	t.controls = append(t.controls, controlCall{zoneID: zoneID, action: action})
}

func (t *fakeTransport) Seek(zoneID, how string, seconds int, done func(error)) {
	t.seeks = append(t.seeks, seekCall{zoneID: zoneID, how: how, seconds: seconds, done: done})
}

func (t *fakeTransport) BaseAddress() string {
	return t.base
}

// drainTasks runs queued tasks synchronously until the queue is empty,
// standing in for the Run loop in unit tests.
func (b *Bridge) drainTasks() {
	for {
		select {
		case task := <-b.tasks:
			b.runTask(task)
		default:
			return
		}
	}
}

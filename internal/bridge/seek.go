package bridge

// Default seek classification thresholds. These model roughly one
// second of natural playback advance between periodic reports with
// half a second of slack, and are empirical tuning rather than
// anything the protocol mandates. Both are overridable through
// configuration.
const (
	DefaultExpectedAdvance int64 = 1_500_000 // microseconds
	DefaultMaxDeviation    int64 = 2_000_000 // microseconds
)

// SeekClassifier distinguishes an explicit seek from ordinary
// monotonic playback advance. Per-zone state lives on the Projection;
// the classifier itself is stateless and safe to share.
type SeekClassifier struct {
	// ExpectedAdvance is the position delta (µs) assumed between two
	// consecutive periodic reports during normal playback.
	ExpectedAdvance int64
	// MaxDeviation is how far (µs) a report may stray from the
	// expected position before it counts as an explicit seek.
	MaxDeviation int64
}

// NewSeekClassifier returns a classifier with the given thresholds,
// falling back to the defaults for non-positive values.
func NewSeekClassifier(expectedAdvance, maxDeviation int64) SeekClassifier {
	if expectedAdvance <= 0 {
		expectedAdvance = DefaultExpectedAdvance
	}
	if maxDeviation <= 0 {
		maxDeviation = DefaultMaxDeviation
	}
	return SeekClassifier{ExpectedAdvance: expectedAdvance, MaxDeviation: maxDeviation}
}

// Classify takes a newly reported position in seconds, updates the
// projection's last reported position, and reports the position in
// microseconds plus whether the jump should surface as an explicit
// seek.
func (c SeekClassifier) Classify(p *Projection, seconds int) (position int64, seeked bool) {
	position = int64(seconds) * 1_000_000
	expected := p.LastPosition + c.ExpectedAdvance
	delta := position - expected
	if delta < 0 {
		delta = -delta
	}
	p.LastPosition = position
	return position, delta > c.MaxDeviation
}

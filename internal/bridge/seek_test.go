package bridge

import "testing"

func TestSeekClassifier_Classify(t *testing.T) {
	tests := []struct {
		name         string
		last         int64
		seconds      int
		wantPosition int64
		wantSeeked   bool
	}{
		{
			name:         "one second later is ordinary progress",
			last:         10_000_000,
			seconds:      11,
			wantPosition: 11_000_000,
			wantSeeked:   false,
		},
		{
			name:         "large jump forward is a seek",
			last:         10_000_000,
			seconds:      30,
			wantPosition: 30_000_000,
			wantSeeked:   true,
		},
		{
			name:         "jump back is a seek",
			last:         60_000_000,
			seconds:      5,
			wantPosition: 5_000_000,
			wantSeeked:   true,
		},
		{
			name:         "stalled position within slack",
			last:         10_000_000,
			seconds:      10,
			wantPosition: 10_000_000,
			wantSeeked:   false,
		},
		{
			name:         "first report after creation counts as progress near zero",
			last:         0,
			seconds:      1,
			wantPosition: 1_000_000,
			wantSeeked:   false,
		},
	}

	c := NewSeekClassifier(0, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Projection{LastPosition: tt.last}
			position, seeked := c.Classify(p, tt.seconds)
			if position != tt.wantPosition {
				t.Errorf("position = %d, want %d", position, tt.wantPosition)
			}
			if seeked != tt.wantSeeked {
				t.Errorf("seeked = %v, want %v", seeked, tt.wantSeeked)
			}
			if p.LastPosition != tt.wantPosition {
				t.Errorf("LastPosition = %d, want %d", p.LastPosition, tt.wantPosition)
			}
		})
	}
}

func TestNewSeekClassifier_Defaults(t *testing.T) {
	c := NewSeekClassifier(0, 0)
	if c.ExpectedAdvance != DefaultExpectedAdvance {
		t.Errorf("ExpectedAdvance = %d, want %d", c.ExpectedAdvance, DefaultExpectedAdvance)
	}
	if c.MaxDeviation != DefaultMaxDeviation {
		t.Errorf("MaxDeviation = %d, want %d", c.MaxDeviation, DefaultMaxDeviation)
	}
}

func TestNewSeekClassifier_Overrides(t *testing.T) {
	c := NewSeekClassifier(1_000_000, 5_000_000)
	p := &Projection{LastPosition: 10_000_000}
	// 15s is 4s past the expectation of 11s, within the 5s deviation.
	if _, seeked := c.Classify(p, 15); seeked {
		t.Error("deviation within widened threshold classified as seek")
	}
}

package bridge

import (
	"strings"
	"testing"
)

func TestTrackID_Deterministic(t *testing.T) {
	a := TrackID("zone1", "Song", "Artist", "Album")
	b := TrackID("zone1", "Song", "Artist", "Album")
	if a != b {
		t.Errorf("TrackID not deterministic: %q != %q", a, b)
	}
}

func TestTrackID_PathShape(t *testing.T) {
	id := TrackID("zone1", "Song", "Artist", "Album")
	if !strings.HasPrefix(id, "/org/mpris/MediaPlayer2/Track/zone1/") {
		t.Errorf("TrackID = %q, want track namespace scoped by zone", id)
	}
	suffix := id[strings.LastIndex(id, "/")+1:]
	if len(suffix) != 8 {
		t.Errorf("hash suffix = %q, want fixed-width 8 hex digits", suffix)
	}
}

func TestTrackID_FieldChangesChangeIdentity(t *testing.T) {
	base := TrackID("zone1", "Song", "Artist", "Album")

	variants := map[string]string{
		"title":  TrackID("zone1", "Song 2", "Artist", "Album"),
		"artist": TrackID("zone1", "Song", "Artist 2", "Album"),
		"album":  TrackID("zone1", "Song", "Artist", "Album 2"),
	}
	for field, id := range variants {
		if id == base {
			t.Errorf("changing %s did not change the identity token", field)
		}
	}
}

func TestTrackID_EmptyFields(t *testing.T) {
	// Missing metadata must still yield an addressable identity.
	id := TrackID("zone1", "", "", "")
	if id == "" {
		t.Fatal("TrackID with empty fields returned empty token")
	}
	if id == TrackID("zone1", "Song", "", "") {
		t.Error("empty and non-empty title collided")
	}
}

func TestHash32_Magnitude(t *testing.T) {
	// Long strings overflow into negative int32 territory; the result
	// must still be the unsigned magnitude.
	inputs := []string{
		"", "a", strings.Repeat("x", 100), "Song|Artist A / Artist B|Album",
	}
	for _, in := range inputs {
		h := hash32(in)
		if h > 1<<31 {
			t.Errorf("hash32(%q) = %d, beyond int32 magnitude range", in, h)
		}
	}
}

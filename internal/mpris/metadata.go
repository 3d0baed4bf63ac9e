//go:build linux

package mpris

import (
	"github.com/godbus/dbus/v5"

	"github.com/nsyntych/roon-mpris/internal/bridge"
)

// noTrackPath is the MPRIS placeholder for "no current track".
const noTrackPath = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")

// metadataMap converts bridge metadata into the a{sv} map MPRIS
// clients expect. Empty fields are omitted rather than sent as zero
// values; vendor keys from Extra pass through untouched.
func metadataMap(m bridge.Metadata) map[string]dbus.Variant {
	meta := make(map[string]dbus.Variant)

	trackID := noTrackPath
	if m.TrackID != "" {
		trackID = dbus.ObjectPath(m.TrackID)
	}
	meta["mpris:trackid"] = dbus.MakeVariant(trackID)

	if m.Length > 0 {
		meta["mpris:length"] = dbus.MakeVariant(m.Length)
	}
	if m.Title != "" {
		meta["xesam:title"] = dbus.MakeVariant(m.Title)
	}
	if m.Album != "" {
		meta["xesam:album"] = dbus.MakeVariant(m.Album)
	}
	if len(m.Artists) > 0 {
		meta["xesam:artist"] = dbus.MakeVariant(m.Artists)
	}
	if m.ArtURL != "" {
		meta["mpris:artUrl"] = dbus.MakeVariant(m.ArtURL)
	}
	for key, value := range m.Extra {
		meta[key] = dbus.MakeVariant(value)
	}
	return meta
}

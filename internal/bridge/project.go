package bridge

import (
	"fmt"
	"strings"
	"unicode"
)

// artistDelimiter joins multiple artists in the compound display
// structure's second line.
const artistDelimiter = " / "

// Vendor-prefixed metadata keys for the optional quality attributes.
// They live outside the standard namespaces so they cannot collide
// with well-known fields.
const (
	extraSampleRate = "roon:sampleRate"
	extraBitDepth   = "roon:bitsPerSample"
	extraBitrate    = "roon:bitrate"
	extraFormat     = "roon:format"
	extraSourceType = "roon:sourceType"
)

// project pushes the full outward-facing state for a zone onto its
// player: metadata, playback status and capability flags. Partial or
// missing now-playing data degrades to omitted fields; projection
// never fails.
func (b *Bridge) project(p *Projection) {
	z := p.Zone
	p.Player.SetMetadata(b.metadataFor(p))
	p.Player.SetPlaybackStatus(capitalize(z.State))
	p.Player.SetCapabilities(Capabilities{
		CanGoNext:     z.IsNextAllowed,
		CanGoPrevious: z.IsPreviousAllowed,
		CanPause:      z.IsPauseAllowed,
		CanSeek:       z.IsSeekAllowed,
	})
}

// metadataFor computes the metadata mapping for the current snapshot.
func (b *Bridge) metadataFor(p *Projection) Metadata {
	np := p.Zone.NowPlaying
	if np == nil {
		return Metadata{}
	}

	var meta Metadata
	if tl := np.ThreeLine; tl != nil {
		meta.Title = tl.Line1
		meta.Album = tl.Line3
		if tl.Line2 != "" {
			meta.Artists = strings.Split(tl.Line2, artistDelimiter)
		}
		meta.TrackID = TrackID(p.Zone.ZoneID, tl.Line1, tl.Line2, tl.Line3)
	} else {
		// Some sources report playback without the display structure;
		// identity still has to exist for absolute seeks to address.
		b.log.Debug().Str("zone", p.Zone.ZoneID).Msg("now playing without display lines")
		meta.TrackID = TrackID(p.Zone.ZoneID, "", "", "")
	}

	if np.Length > 0 {
		meta.Length = int64(np.Length) * 1_000_000
	}
	if np.ImageKey != "" && p.BaseAddress != "" {
		meta.ArtURL = fmt.Sprintf("http://%s/image/%s", p.BaseAddress, np.ImageKey)
	}

	if sf := np.StreamFormat; sf != nil {
		extra := make(map[string]any)
		if sf.SampleRate > 0 {
			extra[extraSampleRate] = sf.SampleRate
		}
		if sf.BitsPerSample > 0 {
			extra[extraBitDepth] = sf.BitsPerSample
		}
		if sf.Bitrate > 0 {
			extra[extraBitrate] = sf.Bitrate
		}
		if sf.Format != "" {
			extra[extraFormat] = sf.Format
		}
		if sf.SourceType != "" {
			extra[extraSourceType] = sf.SourceType
		}
		if len(extra) > 0 {
			meta.Extra = extra
		}
	}
	return meta
}

// capitalize upper-cases the first letter of an upstream state token,
// turning "playing" into the "Playing" form the desktop expects.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

package bridge

import "fmt"

// trackNamespace is the object path prefix all track identities live
// under, as required by the MPRIS TrackId conventions.
const trackNamespace = "/org/mpris/MediaPlayer2/Track"

// hashDelimiter separates the metadata fields before hashing so that
// field boundaries contribute to the result.
const hashDelimiter = "|"

// TrackID derives a stable, path-safe identity token for what a zone
// is currently playing. It is a pure function of its inputs: identical
// metadata within a zone always yields the same token, and changing
// any field almost certainly changes it. Collisions are tolerated.
func TrackID(zoneID, title, artist, album string) string {
	h := hash32(title + hashDelimiter + artist + hashDelimiter + album)
	return fmt.Sprintf("%s/%s/%08x", trackNamespace, SanitizeName(zoneID), h)
}

// hash32 is a 31-multiplier rolling hash truncated to 32 bits and
// reduced to its unsigned magnitude.
func hash32(s string) uint32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return uint32(v)
}

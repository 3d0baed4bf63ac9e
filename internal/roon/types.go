// Package roon talks to a Roon core over its websocket API: SOOD
// discovery, the MOO message framing, extension registration and the
// transport service (zone subscription, control, seek).
package roon

// Zone playback state tokens as delivered by the transport service.
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
	StateLoading = "loading"
)

// Seek modes accepted by the transport seek call.
const (
	SeekRelative = "relative"
	SeekAbsolute = "absolute"
)

// Transport control actions.
const (
	ControlPlay      = "play"
	ControlPause     = "pause"
	ControlPlayPause = "playpause"
	ControlStop      = "stop"
	ControlNext      = "next"
	ControlPrevious  = "previous"
)

// Zone is one independently controllable playback stream, received by
// value on every update. Optional parts may be entirely absent.
type Zone struct {
	ZoneID            string      `json:"zone_id"`
	DisplayName       string      `json:"display_name"`
	State             string      `json:"state"`
	IsNextAllowed     bool        `json:"is_next_allowed"`
	IsPreviousAllowed bool        `json:"is_previous_allowed"`
	IsPauseAllowed    bool        `json:"is_pause_allowed"`
	IsPlayAllowed     bool        `json:"is_play_allowed"`
	IsSeekAllowed     bool        `json:"is_seek_allowed"`
	QueueItemsRemain  int         `json:"queue_items_remaining,omitempty"`
	NowPlaying        *NowPlaying `json:"now_playing,omitempty"`
}

// NowPlaying describes the track a zone is currently playing.
type NowPlaying struct {
	// SeekPosition is the elapsed position in seconds; null while the
	// zone has no meaningful position (e.g. internet radio).
	SeekPosition *int          `json:"seek_position"`
	Length       int           `json:"length,omitempty"`
	ImageKey     string        `json:"image_key,omitempty"`
	ThreeLine    *ThreeLine    `json:"three_line,omitempty"`
	StreamFormat *StreamFormat `json:"stream_format,omitempty"`
}

// ThreeLine is Roon's compound display structure: title, artist(s) and
// album. Line2 may join multiple artists with " / ".
type ThreeLine struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
	Line3 string `json:"line3"`
}

// StreamFormat carries the optional quality attributes of the current
// stream. Cores omit it entirely for some sources.
type StreamFormat struct {
	SampleRate    int    `json:"sample_rate,omitempty"`
	BitsPerSample int    `json:"bits_per_sample,omitempty"`
	Bitrate       int    `json:"bitrate,omitempty"`
	Format        string `json:"format,omitempty"`
	SourceType    string `json:"source_type,omitempty"`
}

// ZoneSeek is one entry of a zones_seek_changed batch: a periodic
// position report for a zone.
type ZoneSeek struct {
	ZoneID             string `json:"zone_id"`
	QueueTimeRemaining int    `json:"queue_time_remaining,omitempty"`
	SeekPosition       *int   `json:"seek_position"`
}

// ZoneHandler receives zone event batches from a subscribed client.
// All methods are invoked sequentially from the client's read loop, so
// implementations see events one at a time, each run to completion.
type ZoneHandler interface {
	// ZonesSubscribed delivers the full zone list when the
	// subscription is established.
	ZonesSubscribed(zones []Zone)
	ZonesAdded(zones []Zone)
	ZonesChanged(zones []Zone)
	ZonesRemoved(zoneIDs []string)
	ZonesSeekChanged(changes []ZoneSeek)
	// CoreLost is called exactly once when the connection to the core
	// goes away, after which no further events are delivered.
	CoreLost(err error)
}

// changedPayload is the body of a transport "Changed" continuation.
type changedPayload struct {
	ZonesAdded       []Zone     `json:"zones_added,omitempty"`
	ZonesChanged     []Zone     `json:"zones_changed,omitempty"`
	ZonesRemoved     []string   `json:"zones_removed,omitempty"`
	ZonesSeekChanged []ZoneSeek `json:"zones_seek_changed,omitempty"`
}

// subscribedPayload is the body of a transport "Subscribed" continuation.
type subscribedPayload struct {
	Zones []Zone `json:"zones"`
}

package roon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMooRoundTrip(t *testing.T) {
	req, err := newRequest(7, "com.roonlabs.transport:2/control", map[string]string{
		"zone_or_output_id": "z1",
		"control":           "playpause",
	})
	require.NoError(t, err)

	parsed, err := parseMessage(req.encode())
	require.NoError(t, err)

	assert.Equal(t, verbRequest, parsed.Verb)
	assert.Equal(t, "com.roonlabs.transport:2/control", parsed.Name)
	assert.Equal(t, 7, parsed.RequestID)
	assert.Equal(t, contentTypeJSON, parsed.ContentType)

	var body map[string]string
	require.NoError(t, parsed.unmarshal(&body))
	assert.Equal(t, "z1", body["zone_or_output_id"])
	assert.Equal(t, "playpause", body["control"])
}

func TestMooBodylessFrame(t *testing.T) {
	req, err := newRequest(1, "com.roonlabs.registry:1/info", nil)
	require.NoError(t, err)

	parsed, err := parseMessage(req.encode())
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.RequestID)
	assert.Empty(t, parsed.Body)
}

func TestMooParseReply(t *testing.T) {
	raw := "MOO/1 CONTINUE Subscribed\nRequest-Id: 3\nContent-Type: application/json\nContent-Length: 12\n\n{\"zones\":[]}"

	parsed, err := parseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, verbContinue, parsed.Verb)
	assert.Equal(t, "Subscribed", parsed.Name)
	assert.Equal(t, 3, parsed.RequestID)

	var payload subscribedPayload
	require.NoError(t, parsed.unmarshal(&payload))
	assert.Empty(t, payload.Zones)
}

func TestMooParseTolerantOfCarriageReturns(t *testing.T) {
	raw := "MOO/1 COMPLETE Success\r\nRequest-Id: 9\r\n\r\n"
	// The \r\n\r\n terminator still contains the \n\n boundary.
	parsed, err := parseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Success", parsed.Name)
	assert.Equal(t, 9, parsed.RequestID)
}

func TestMooParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty frame", raw: ""},
		{name: "missing terminator", raw: "MOO/1 COMPLETE Success\nRequest-Id: 1\n"},
		{name: "wrong protocol", raw: "HTTP/1.1 200 OK\n\n"},
		{name: "unknown verb", raw: "MOO/1 SHOUT Success\nRequest-Id: 1\n\n"},
		{name: "bad request id", raw: "MOO/1 COMPLETE Success\nRequest-Id: abc\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMessage([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

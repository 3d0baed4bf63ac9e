package roon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MOO is the text-header framed protocol Roon speaks over the
// websocket: a request line, RFC-822 style headers and an optional
// JSON body.
const mooProtocol = "MOO/1"

const (
	verbRequest  = "REQUEST"
	verbComplete = "COMPLETE"
	verbContinue = "CONTINUE"
)

const contentTypeJSON = "application/json"

// message is a single MOO frame. Name carries service/method for
// requests and the status word ("Success", "Subscribed", ...) for
// replies.
type message struct {
	Verb        string
	Name        string
	RequestID   int
	ContentType string
	Body        []byte
}

// encode renders the frame for the wire.
func (m *message) encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s %s\n", mooProtocol, m.Verb, m.Name)
	fmt.Fprintf(&buf, "Request-Id: %d\n", m.RequestID)
	if len(m.Body) > 0 {
		ct := m.ContentType
		if ct == "" {
			ct = contentTypeJSON
		}
		fmt.Fprintf(&buf, "Content-Type: %s\n", ct)
		fmt.Fprintf(&buf, "Content-Length: %d\n", len(m.Body))
	}
	buf.WriteByte('\n')
	buf.Write(m.Body)
	return buf.Bytes()
}

// parseMessage decodes one frame. Header lines tolerate trailing
// carriage returns; unknown headers are skipped.
func parseMessage(data []byte) (*message, error) {
	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		head, body, found = bytes.Cut(data, []byte("\r\n\r\n"))
	}
	if !found {
		return nil, fmt.Errorf("moo: frame without header terminator")
	}

	lines := strings.Split(strings.ReplaceAll(string(head), "\r", ""), "\n")
	fields := strings.SplitN(lines[0], " ", 3)
	if len(fields) != 3 || fields[0] != mooProtocol {
		return nil, fmt.Errorf("moo: bad request line %q", lines[0])
	}

	m := &message{Verb: fields[1], Name: fields[2]}
	switch m.Verb {
	case verbRequest, verbComplete, verbContinue:
	default:
		return nil, fmt.Errorf("moo: unknown verb %q", m.Verb)
	}

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch name {
		case "Request-Id":
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("moo: bad Request-Id %q: %w", value, err)
			}
			m.RequestID = id
		case "Content-Type":
			m.ContentType = value
		}
	}

	if len(body) > 0 {
		m.Body = body
	}
	return m, nil
}

// unmarshal decodes the JSON body into v.
func (m *message) unmarshal(v any) error {
	if len(m.Body) == 0 {
		return fmt.Errorf("moo: %s %s has no body", m.Verb, m.Name)
	}
	if err := json.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("moo: decode %s body: %w", m.Name, err)
	}
	return nil
}

// newRequest builds a REQUEST frame with an encoded JSON body. A nil
// body produces a bodyless frame.
func newRequest(id int, name string, body any) (*message, error) {
	m := &message{Verb: verbRequest, Name: name, RequestID: id}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("moo: encode %s body: %w", name, err)
		}
		m.Body = encoded
		m.ContentType = contentTypeJSON
	}
	return m, nil
}

// newReply builds a COMPLETE frame answering a core request.
func newReply(id int, status string) *message {
	return &message{Verb: verbComplete, Name: status, RequestID: id}
}

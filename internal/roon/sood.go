package roon

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SOOD is Roon's UDP discovery protocol: a broadcast query carrying
// name/value properties, answered by every core on the segment.
const (
	soodPort = 9003
	// soodServiceID identifies the Roon core service in queries.
	soodServiceID = "00720724-5143-4a9b-abac-0e50cba674bb"
)

const (
	soodQuery    = 'Q'
	soodResponse = 'R'
)

var soodHeader = []byte{'S', 'O', 'O', 'D', 2}

// CoreEndpoint is one discovered Roon core.
type CoreEndpoint struct {
	Host        string
	HTTPPort    int
	CoreID      string
	DisplayName string
}

// Address returns the host:port the websocket API lives on.
func (e CoreEndpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.HTTPPort))
}

// Discover broadcasts a SOOD query and returns the first core that
// answers within the timeout.
func Discover(ctx context.Context, timeout time.Duration) (*CoreEndpoint, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("sood: listen: %w", err)
	}
	defer conn.Close()

	query := encodeSoodQuery(uuid.NewString())
	dest := &net.UDPAddr{IP: net.IPv4bcast, Port: soodPort}
	if _, err := conn.WriteToUDP(query, dest); err != nil {
		return nil, fmt.Errorf("sood: broadcast query: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("sood: set deadline: %w", err)
	}

	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return nil, fmt.Errorf("sood: no core answered: %w", err)
		}
		props, err := parseSoodResponse(buf[:n])
		if err != nil {
			// Something else on the segment; keep listening.
			continue
		}
		port, err := strconv.Atoi(props["http_port"])
		if err != nil || port <= 0 {
			continue
		}
		return &CoreEndpoint{
			Host:        addr.IP.String(),
			HTTPPort:    port,
			CoreID:      props["unique_id"],
			DisplayName: props["display_name"],
		}, nil
	}
}

// encodeSoodQuery builds a query packet. Each property is a
// byte-length-prefixed name followed by a uint16-length-prefixed
// value.
func encodeSoodQuery(tid string) []byte {
	pkt := append([]byte{}, soodHeader...)
	pkt = append(pkt, soodQuery)
	pkt = appendSoodProp(pkt, "query_service_id", soodServiceID)
	pkt = appendSoodProp(pkt, "_tid", tid)
	return pkt
}

func appendSoodProp(pkt []byte, name, value string) []byte {
	pkt = append(pkt, byte(len(name)))
	pkt = append(pkt, name...)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(len(value)))
	return append(pkt, value...)
}

// parseSoodResponse extracts the property map from a response packet.
func parseSoodResponse(data []byte) (map[string]string, error) {
	if len(data) < len(soodHeader)+1 || string(data[:len(soodHeader)]) != string(soodHeader) {
		return nil, fmt.Errorf("sood: not a sood packet")
	}
	if data[len(soodHeader)] != soodResponse {
		return nil, fmt.Errorf("sood: not a response packet")
	}

	props := make(map[string]string)
	rest := data[len(soodHeader)+1:]
	for len(rest) > 0 {
		nameLen := int(rest[0])
		rest = rest[1:]
		if len(rest) < nameLen+2 {
			return nil, fmt.Errorf("sood: truncated property name")
		}
		name := string(rest[:nameLen])
		rest = rest[nameLen:]
		valueLen := int(binary.BigEndian.Uint16(rest))
		rest = rest[2:]
		if valueLen == 0xFFFF {
			// Null value marker.
			props[name] = ""
			continue
		}
		if len(rest) < valueLen {
			return nil, fmt.Errorf("sood: truncated property value")
		}
		props[name] = string(rest[:valueLen])
		rest = rest[valueLen:]
	}
	return props, nil
}

// Package stomp implements the subset of STOMP 1.2 framing the FixPoint
// backend speaks over its websocket endpoints: CONNECT/CONNECTED handshake,
// SUBSCRIBE/UNSUBSCRIBE, SEND, MESSAGE, ERROR, and DISCONNECT. Frames travel
// as websocket text messages terminated by a NUL octet.
package stomp

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Frame commands used by the client and backend.
const (
	CmdConnect     = "CONNECT"
	CmdConnected   = "CONNECTED"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
	CmdSend        = "SEND"
	CmdMessage     = "MESSAGE"
	CmdError       = "ERROR"
	CmdDisconnect  = "DISCONNECT"
	CmdReceipt     = "RECEIPT"
)

// Frame is a single STOMP frame.
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

// New builds a frame with the given command and header pairs.
func New(command string, headers ...string) *Frame {
	f := &Frame{Command: command, Headers: make(map[string]string, len(headers)/2)}
	for i := 0; i+1 < len(headers); i += 2 {
		f.Headers[headers[i]] = headers[i+1]
	}
	return f
}

// Connect builds the authenticating handshake frame. The bearer token
// rides in the Authorization header, mirroring the HTTP layer.
func Connect(host, bearerToken string) *Frame {
	f := New(CmdConnect,
		"accept-version", "1.2",
		"heart-beat", "0,0",
		"host", host,
	)
	if bearerToken != "" {
		f.Headers["Authorization"] = "Bearer " + bearerToken
	}
	return f
}

// Subscribe builds a subscription frame for a destination.
func Subscribe(id, destination string) *Frame {
	return New(CmdSubscribe, "id", id, "destination", destination, "ack", "auto")
}

// Unsubscribe cancels a subscription by id.
func Unsubscribe(id string) *Frame {
	return New(CmdUnsubscribe, "id", id)
}

// Send builds an application SEND frame with a JSON body.
func Send(destination string, body []byte) *Frame {
	f := New(CmdSend, "destination", destination, "content-type", "application/json")
	f.Body = body
	return f
}

// Disconnect builds the graceful teardown frame.
func Disconnect() *Frame {
	return New(CmdDisconnect)
}

// Destination returns the destination header, or "".
func (f *Frame) Destination() string {
	return f.Headers["destination"]
}

// Marshal encodes the frame for the wire. Headers are written in sorted
// order so output is deterministic.
func (f *Frame) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Command)
	buf.WriteByte('\n')

	keys := make([]string, 0, len(f.Headers)+1)
	for k := range f.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(escapeHeader(f.Command, k))
		buf.WriteByte(':')
		buf.WriteString(escapeHeader(f.Command, f.Headers[k]))
		buf.WriteByte('\n')
	}
	if len(f.Body) > 0 {
		buf.WriteString("content-length:")
		buf.WriteString(strconv.Itoa(len(f.Body)))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// Parse decodes one frame from raw websocket payload bytes. Heartbeat
// frames (bare EOL) yield (nil, nil).
func Parse(raw []byte) (*Frame, error) {
	raw = bytes.TrimRight(raw, "\x00")
	trimmed := bytes.TrimLeft(raw, "\r\n")
	if len(trimmed) == 0 {
		return nil, nil // heartbeat
	}

	headerEnd := bytes.Index(trimmed, []byte("\n\n"))
	sepLen := 2
	if crlf := bytes.Index(trimmed, []byte("\r\n\r\n")); crlf != -1 && (headerEnd == -1 || crlf < headerEnd) {
		headerEnd = crlf
		sepLen = 4
	}
	if headerEnd == -1 {
		return nil, fmt.Errorf("stomp: frame missing header terminator")
	}

	head := strings.Split(strings.ReplaceAll(string(trimmed[:headerEnd]), "\r\n", "\n"), "\n")
	command := strings.TrimSpace(head[0])
	if command == "" {
		return nil, fmt.Errorf("stomp: empty command")
	}

	f := &Frame{Command: command, Headers: make(map[string]string, len(head)-1)}
	for _, line := range head[1:] {
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("stomp: malformed header %q", line)
		}
		k = unescapeHeader(command, k)
		// First occurrence wins, per the STOMP spec.
		if _, exists := f.Headers[k]; !exists {
			f.Headers[k] = unescapeHeader(command, v)
		}
	}

	body := trimmed[headerEnd+sepLen:]
	if n, err := strconv.Atoi(f.Headers["content-length"]); err == nil && n >= 0 && n <= len(body) {
		body = body[:n]
	}
	if len(body) > 0 {
		f.Body = body
	}
	return f, nil
}

// Header escaping per STOMP 1.2. CONNECT and CONNECTED frames are exempt
// for backward compatibility with 1.0.
var (
	headerEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, ":", `\c`, "\r", `\r`)
	headerUnescaper = strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\c`, ":", `\\`, `\`)
)

func escapeHeader(command, s string) string {
	if command == CmdConnect || command == CmdConnected {
		return s
	}
	return headerEscaper.Replace(s)
}

func unescapeHeader(command, s string) string {
	if command == CmdConnect || command == CmdConnected {
		return s
	}
	return headerUnescaper.Replace(s)
}

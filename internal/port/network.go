package port

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// tcpConn is a raw, length-unframed TCP byte stream.
type tcpConn struct {
	c net.Conn
}

func (t *tcpConn) Read(b []byte) (int, error)  { return t.c.Read(b) }
func (t *tcpConn) Write(b []byte) (int, error) { return t.c.Write(b) }
func (t *tcpConn) Close() error                { return t.c.Close() }

// TCPOpener returns an Opener that dials host:port with a 10s connect
// timeout, for network-bridged serial (spec §4.1's "network-bridged
// serial").
func TCPOpener(host string, tcpPort int) Opener {
	return func() (Conn, error) {
		addr := fmt.Sprintf("%s:%d", host, tcpPort)
		c, err := net.DialTimeout("tcp", addr, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return &tcpConn{c: c}, nil
	}
}

// errWSClosed is returned once a WebSocket connection has failed; further
// reads short-circuit rather than calling ReadMessage again.
var errWSClosed = fmt.Errorf("websocket connection closed")

// wsConn buffers WebSocket binary messages into the plain byte-stream shape
// Port expects.
type wsConn struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

func (w *wsConn) Read(p []byte) (int, error) {
	if w.closed {
		return 0, errWSClosed
	}
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error { return w.conn.Close() }

// WebSocketConfig describes a tunneled RS-485 endpoint reached through a
// bridging daemon. Username/Password, when Username is non-empty, are
// sent as an HTTP Basic Authorization header on the handshake request.
type WebSocketConfig struct {
	URL           string
	SkipTLSVerify bool
	Username      string
	Password      string
}

// WebSocketOpener returns an Opener that dials a ws:// or wss:// endpoint.
func WebSocketOpener(cfg WebSocketConfig) Opener {
	return func() (Conn, error) {
		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		if cfg.SkipTLSVerify {
			dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		headers := http.Header{}
		if cfg.Username != "" {
			creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
			headers.Set("Authorization", "Basic "+creds)
		}

		conn, resp, err := dialer.DialContext(ctx, cfg.URL, headers)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("websocket dial %s failed (HTTP %d): %w", cfg.URL, resp.StatusCode, err)
			}
			return nil, fmt.Errorf("websocket dial %s failed: %w", cfg.URL, err)
		}
		return &wsConn{conn: conn}, nil
	}
}

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// tcpTransport is the concrete deviceclient.Transport this CLI dials
// with: a length-prefixed frame over a plain TCP connection. The RPC
// transport is an unspecified external collaborator in the library
// itself; the CLI needs one concrete choice to actually run commands
// against a device.
type tcpTransport struct {
	mu   sync.Mutex
	conn net.Conn
}

func newTCPTransport() *tcpTransport {
	return &tcpTransport{}
}

func (t *tcpTransport) Connect(ctx context.Context, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return fmt.Errorf("already connected")
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	t.conn = conn
	return nil
}

func (t *tcpTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *tcpTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *tcpTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("not connected")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := t.conn.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := t.conn.Write(data)
	return err
}

func (t *tcpTransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, fmt.Errorf("not connected")
	}
	if timeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(timeout))
	} else if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetReadDeadline(deadline)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(t.conn, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

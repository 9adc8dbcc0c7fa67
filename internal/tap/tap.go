// Package tap implements the high-throughput opaque channel from
// §4.10: a producer tap (device→host, blocking receive with timeout)
// and a consumer tap (host→device, non-blocking send), both connecting
// to an endpoint the device advertises and rewriting its host to the
// device's own URI host at connect time.
//
// Grounded on the teacher's internal/cip/client/transport.go Transport
// interface shape (Connect/Send/Receive/IsConnected over a deadline),
// generalized from one symmetric role to the tap's two asymmetric
// roles. No pub/sub broker client (ZeroMQ/NATS/AMQP) appears anywhere
// in the retrieval corpus, so the tap rides a length-prefixed framing
// over a plain TCP socket rather than a broker's wire protocol.
package tap

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// Role selects which side of the tap this endpoint plays.
type Role int

const (
	// RoleProducer is device→host: a subscriber with an empty topic
	// filter, per §4.10.
	RoleProducer Role = iota
	// RoleConsumer is host→device: a publisher, per §4.10.
	RoleConsumer
)

// recvHighWater is the requested pending-message high-water mark.
// TCP has no native message high-water concept (that is a broker
// socket-type option). The value is not applied anywhere: Receive
// reads one length-prefixed frame at a time straight from the socket
// and keeps no queue of its own, so no limit on unread frames is
// enforced.
const recvHighWater = 5000

// recvBufferBytes is the requested OS receive buffer size. The OS may
// cap this; per §5, large receive buffers are best-effort.
const recvBufferBytes = 16 * 1024 * 1024

// keepaliveIdle is the TCP keepalive idle period, per §4.10.
const keepaliveIdle = 60 * time.Second

// frameLengthBytes is the length-prefix width for the length-prefixed
// framing this tap imposes over the raw TCP byte stream.
const frameLengthBytes = 4

// Tap is one endpoint of the opaque channel.
type Tap struct {
	role Role

	advertisedAddr string
	deviceHost     string

	mu   sync.Mutex
	conn net.Conn
}

// NewProducerTap builds a producer (subscriber) tap for the endpoint
// the device advertised at advertisedHost:port.
func NewProducerTap(advertisedHost string, port uint16, deviceHost string) *Tap {
	return &Tap{role: RoleProducer, advertisedAddr: fmt.Sprintf("%s:%d", advertisedHost, port), deviceHost: deviceHost}
}

// NewConsumerTap builds a consumer (publisher) tap for the endpoint
// the device advertised at advertisedHost:port.
func NewConsumerTap(advertisedHost string, port uint16, deviceHost string) *Tap {
	return &Tap{role: RoleConsumer, advertisedAddr: fmt.Sprintf("%s:%d", advertisedHost, port), deviceHost: deviceHost}
}

// rewriteHost replaces the advertised hostname with the device's own
// URI host, per §4.10's connect-time rewrite rule.
func rewriteHost(advertisedAddr, deviceHost string) string {
	idx := strings.LastIndex(advertisedAddr, ":")
	if idx < 0 {
		return deviceHost
	}
	return deviceHost + advertisedAddr[idx:]
}

func tuneSocket(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcp.SetKeepAlive(true)
	_ = tcp.SetKeepAlivePeriod(keepaliveIdle)

	raw, err := tcp.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, recvBufferBytes)
	})
}

// Connect dials the (host-rewritten) advertised endpoint.
func (t *Tap) Connect(ctx context.Context) status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return status.New(status.FailedPrecondition, "tap already connected")
	}

	addr := rewriteHost(t.advertisedAddr, t.deviceHost)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return status.New(status.Unavailable, "tap connect to %s: %v", addr, err)
	}
	tuneSocket(conn)
	t.conn = conn
	return status.OKStatus()
}

// Close releases the underlying socket.
func (t *Tap) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// IsConnected reports whether Connect has succeeded and Close has not
// yet been called.
func (t *Tap) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Receive blocks for up to timeout for the next message, valid only
// on a producer tap, per §4.10. A poll miss (read deadline exceeded)
// surfaces as deadline_exceeded, matching EAGAIN's translation.
func (t *Tap) Receive(timeout time.Duration) ([]byte, status.Status) {
	if t.role != RoleProducer {
		return nil, status.New(status.FailedPrecondition, "receive is only valid on a producer tap")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, status.New(status.FailedPrecondition, "tap not connected")
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, status.New(status.Internal, "set read deadline: %v", err)
	}

	var lenBuf [frameLengthBytes]byte
	if _, err := io.ReadFull(t.conn, lenBuf[:]); err != nil {
		return nil, classifyErr(err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])

	frame := make([]byte, n)
	if _, err := io.ReadFull(t.conn, frame); err != nil {
		return nil, classifyErr(err)
	}
	return frame, status.OKStatus()
}

// Send transmits one message, valid only on a consumer tap, per
// §4.10. The send is non-blocking: a short write deadline stands in
// for EAGAIN/EWOULDBLOCK, surfaced as unavailable.
func (t *Tap) Send(data []byte) status.Status {
	if t.role != RoleConsumer {
		return status.New(status.FailedPrecondition, "send is only valid on a consumer tap")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return status.New(status.FailedPrecondition, "tap not connected")
	}

	var lenBuf [frameLengthBytes]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))

	sendErr := func(err error) status.Status {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return status.New(status.Unavailable, "tap send would block")
		}
		return classifyErr(err)
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return status.New(status.Internal, "set write deadline: %v", err)
	}
	if _, err := t.conn.Write(lenBuf[:]); err != nil {
		return sendErr(err)
	}
	if _, err := t.conn.Write(data); err != nil {
		return sendErr(err)
	}
	return status.OKStatus()
}

func classifyErr(err error) status.Status {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return status.New(status.DeadlineExceeded, "tap i/o timed out")
	}
	if err == io.EOF {
		return status.New(status.Unavailable, "tap connection closed")
	}
	return status.New(status.Internal, "tap i/o: %v", err)
}

// Package stream implements the datagram stream endpoints from §4.7
// and §4.8: Source (host→device send) and Sink (device→host bind +
// receive + decode), both non-blocking with optional multicast.
//
// Grounded on the teacher's internal/cip/client/transport.go
// UDPTransport (bind, deadline-based non-blocking send/receive) and
// internal/cip/client/multicast_transport.go MulticastTransport
// (ipv4.PacketConn group join/leave, TTL, loopback).
package stream

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/sciencecorp/synapse-cpp/internal/deviceclient"
	"github.com/sciencecorp/synapse-cpp/internal/monitor"
	"github.com/sciencecorp/synapse-cpp/internal/ndtp"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// DefaultSinkPort is the stream sink's listen port when unspecified,
// per §6.
const DefaultSinkPort = 50038

// DefaultRecvBufferBytes is the stream sink's receive buffer request,
// per §6.
const DefaultRecvBufferBytes = 5 * 1024 * 1024

// pollInterval is the non-blocking read deadline used by Sink.Read,
// per §4.8 step 1.
const pollInterval = time.Millisecond

// Destination describes where a Source writes to, or where a Sink
// listens: a unicast host:port, or a multicast group.
type Destination struct {
	Host      string
	Port      uint16
	Multicast bool
}

func (d Destination) port(defaultPort uint16) uint16 {
	if d.Port != 0 {
		return d.Port
	}
	return defaultPort
}

func setReuseAndBuffer(network, address string, c interface {
	Control(func(fd uintptr)) error
}, rcvBufBytes int, grantedOut *int) error {
	return c.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		if rcvBufBytes > 0 {
			_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, rcvBufBytes)
		}
		if granted, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF); err == nil {
			*grantedOut = granted
		}
	})
}

func listenUDPTuned(network, addr string, rcvBufBytes int) (*net.UDPConn, int, error) {
	var granted int
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return setReuseAndBuffer(network, address, c, rcvBufBytes, &granted)
		},
	}
	pc, err := lc.ListenPacket(context.Background(), network, addr)
	if err != nil {
		return nil, 0, err
	}
	return pc.(*net.UDPConn), granted, nil
}

// Source sends datagrams to a fixed destination, per §4.7.
type Source struct {
	dest Destination

	mu   sync.Mutex
	conn *net.UDPConn
}

// NewSource builds a Source writing to dest. The socket is created
// lazily on first Write, per §4.7.
func NewSource(dest Destination) *Source {
	return &Source{dest: dest}
}

// nodeSocketDestination looks up nodeID's device-assigned socket,
// per §4.7/§4.8's device-bound construction path. It fails
// failed_precondition when the device hasn't reported that socket
// yet — the canonical "stream endpoint used before its Device is
// configured" case from §7.
func nodeSocketDestination(dev *deviceclient.Device, nodeID uint32, multicast bool) (Destination, status.Status) {
	sock, ok := dev.NodeSocket(nodeID)
	if !ok {
		return Destination{}, status.New(status.FailedPrecondition, "node %d has no device-assigned socket; configure the device first", nodeID)
	}
	return Destination{Host: sock.Host, Port: sock.Port, Multicast: multicast}, status.OKStatus()
}

// NewSourceForDevice builds a Source writing to the socket dev
// assigned nodeID, per §4.7. It fails failed_precondition until a
// successful Info on dev has reported a socket for nodeID.
func NewSourceForDevice(dev *deviceclient.Device, nodeID uint32) (*Source, status.Status) {
	dest, st := nodeSocketDestination(dev, nodeID, false)
	if !st.Ok() {
		return nil, st
	}
	return NewSource(dest), status.OKStatus()
}

func (s *Source) init() status.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return status.OKStatus()
	}
	conn, _, err := listenUDPTuned("udp", ":0", 0)
	if err != nil {
		return status.New(status.Internal, "init source socket: %v", err)
	}
	s.conn = conn
	return status.OKStatus()
}

// Write sends data as one datagram to the destination, per §4.7.
func (s *Source) Write(data []byte) status.Status {
	if st := s.init(); !st.Ok() {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	addr := &net.UDPAddr{IP: net.ParseIP(s.dest.Host), Port: int(s.dest.port(DefaultSinkPort))}
	if addr.IP == nil {
		return status.New(status.InvalidArgument, "source destination host %q does not parse as an IP address", s.dest.Host)
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(pollInterval)); err != nil {
		return status.New(status.Internal, "set write deadline: %v", err)
	}
	if _, err := s.conn.WriteToUDP(data, addr); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return status.New(status.Unavailable, "write would block")
		}
		return status.New(status.Internal, "write datagram: %v", err)
	}
	return status.OKStatus()
}

// Close releases the underlying socket.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Sink binds, receives, and decodes NDTP datagrams, per §4.8.
type Sink struct {
	dest Destination

	mu          sync.Mutex
	conn        *net.UDPConn
	pconn       *ipv4.PacketConn
	grantedRecv int
	Stats       *monitor.Stats
}

// NewSink builds a Sink listening per dest. The socket is created
// lazily on first Read.
func NewSink(dest Destination) *Sink {
	return &Sink{dest: dest, Stats: &monitor.Stats{}}
}

// NewSinkForDevice builds a Sink bound to the socket dev assigned
// nodeID, per §4.8. It fails failed_precondition until a successful
// Info on dev has reported a socket for nodeID.
func NewSinkForDevice(dev *deviceclient.Device, nodeID uint32, multicast bool) (*Sink, status.Status) {
	dest, st := nodeSocketDestination(dev, nodeID, multicast)
	if !st.Ok() {
		return nil, st
	}
	return NewSink(dest), status.OKStatus()
}

func (s *Sink) init() status.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return status.OKStatus()
	}

	port := s.dest.port(DefaultSinkPort)

	if s.dest.Multicast {
		conn, granted, err := listenUDPTuned("udp4", ":"+strconv.Itoa(int(port)), DefaultRecvBufferBytes)
		if err != nil {
			return status.New(status.Internal, "init multicast sink socket: %v", err)
		}
		groupIP := net.ParseIP(s.dest.Host)
		if groupIP == nil {
			_ = conn.Close()
			return status.New(status.InvalidArgument, "multicast group %q does not parse as an IP address", s.dest.Host)
		}
		p := ipv4.NewPacketConn(conn)
		if err := p.JoinGroup(nil, &net.UDPAddr{IP: groupIP}); err != nil {
			_ = conn.Close()
			return status.New(status.Internal, "join multicast group %s: %v", groupIP, err)
		}
		s.conn = conn
		s.pconn = p
		s.grantedRecv = granted
		return status.OKStatus()
	}

	addr := fmt.Sprintf("%s:%d", s.dest.Host, port)
	conn, granted, err := listenUDPTuned("udp", addr, DefaultRecvBufferBytes)
	if err != nil {
		return status.New(status.Internal, "init sink socket: %v", err)
	}
	s.conn = conn
	s.grantedRecv = granted
	return status.OKStatus()
}

// GrantedRecvBufferBytes returns the receive buffer size the OS
// actually granted, which may be smaller than DefaultRecvBufferBytes.
func (s *Sink) GrantedRecvBufferBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grantedRecv
}

// LocalAddr returns the sink's bound address, initializing the socket
// first if necessary. Useful for tests and for binding with an
// ephemeral port (dest.Port == 0).
func (s *Sink) LocalAddr() (*net.UDPAddr, status.Status) {
	if st := s.init(); !st.Ok() {
		return nil, st
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.LocalAddr().(*net.UDPAddr), status.OKStatus()
}

// Read polls for one datagram, decodes it as an NDTPMessage, and
// returns the corresponding record, per §4.8's read() steps.
func (s *Sink) Read() (*ndtp.BroadbandRecord, *ndtp.SpiketrainRecord, ndtp.Header, int, status.Status) {
	if st := s.init(); !st.Ok() {
		return nil, nil, ndtp.Header{}, 0, st
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return nil, nil, ndtp.Header{}, 0, status.New(status.Internal, "set read deadline: %v", err)
	}

	buf := make([]byte, 8192)
	n, _, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil, ndtp.Header{}, 0, status.New(status.Unavailable, "no datagram available")
		}
		return nil, nil, ndtp.Header{}, 0, status.New(status.Internal, "read datagram: %v", err)
	}

	bb, sp, header, err := ndtp.DecodeRecord(buf[:n])
	if err != nil {
		return nil, nil, header, n, status.FromError(err)
	}

	s.Stats.OnPacket(header.SeqNumber, n)
	return bb, sp, header, n, status.OKStatus()
}

// Close leaves the multicast group (if joined) and releases the
// socket. Multicast membership is implicitly dropped on close by the
// OS even without an explicit LeaveGroup, but we call it for clarity.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	if s.pconn != nil {
		if groupIP := net.ParseIP(s.dest.Host); groupIP != nil {
			_ = s.pconn.LeaveGroup(nil, &net.UDPAddr{IP: groupIP})
		}
	}
	err := s.conn.Close()
	s.conn = nil
	s.pconn = nil
	return err
}

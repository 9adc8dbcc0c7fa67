// Package deviceclient implements the Device lifecycle from §4.6:
// configure/start/stop/info/query/get_logs/update_settings/list_apps/
// tail_logs, each built on a request → RPC-with-deadline → status
// translation shape.
//
// Grounded on the teacher's internal/cip/client/client.go ENIPClient:
// same build-request / send-with-deadline / receive-with-timeout /
// decode / translate-status pipeline, and its Transport interface
// (Connect/Disconnect/Send/Receive/IsConnected), reused here as the
// seam for the RPC transport the spec deliberately leaves unspecified.
package deviceclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sciencecorp/synapse-cpp/internal/signalchain"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// Transport is the RPC channel abstraction. The RPC transport itself
// is a declared non-goal of the spec; this interface is the seam a
// concrete implementation plugs into.
type Transport interface {
	Connect(ctx context.Context, addr string) error
	Disconnect() error
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	IsConnected() bool
}

// NodeSocket is the device-assigned endpoint metadata for one node,
// returned by Info and consulted by internal/stream when a
// stream endpoint is bound to a Device rather than an explicit
// address.
type NodeSocket struct {
	NodeID uint32
	Host   string
	Port   uint16
}

// DeviceInfo is the result of Info(): current configuration, per-node
// socket assignments, and firmware identification.
type DeviceInfo struct {
	Config          signalchain.SerializedConfig
	NodeSockets     []NodeSocket
	FirmwareVersion string
}

// Device is a client handle to one remote appliance.
type Device struct {
	transport Transport
	addr      string

	mu          sync.RWMutex
	configured  bool
	nodeSockets []NodeSocket
}

// New builds a Device bound to transport and addr. Connect must be
// called (or transport must already be connected) before issuing
// lifecycle calls.
func New(transport Transport, addr string) *Device {
	return &Device{transport: transport, addr: addr}
}

// Connect establishes the underlying transport connection.
func (d *Device) Connect(ctx context.Context) status.Status {
	if err := d.transport.Connect(ctx, d.addr); err != nil {
		return classifyTransportErr(err)
	}
	return status.OKStatus()
}

// Disconnect tears down the underlying transport connection.
func (d *Device) Disconnect() status.Status {
	if err := d.transport.Disconnect(); err != nil {
		return status.New(status.Internal, "disconnect: %v", err)
	}
	return status.OKStatus()
}

// wireRequest is the request envelope sent over Transport.
type wireRequest struct {
	Op      string `yaml:"op"`
	Payload []byte `yaml:"payload,omitempty"`
}

// wireResponse is the response envelope received over Transport.
type wireResponse struct {
	Ok      bool   `yaml:"ok"`
	Code    int    `yaml:"code,omitempty"`
	Message string `yaml:"message,omitempty"`
	Payload []byte `yaml:"payload,omitempty"`
}

func (d *Device) call(ctx context.Context, op string, payload []byte, timeout time.Duration) ([]byte, status.Status) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	wire, err := yaml.Marshal(wireRequest{Op: op, Payload: payload})
	if err != nil {
		return nil, status.New(status.Internal, "encode %s request: %v", op, err)
	}
	if err := d.transport.Send(ctx, wire); err != nil {
		return nil, classifyTransportErr(err)
	}

	raw, err := d.transport.Receive(ctx, timeout)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	var resp wireResponse
	if err := yaml.Unmarshal(raw, &resp); err != nil {
		return nil, status.New(status.Internal, "decode %s response: %v", op, err)
	}
	if !resp.Ok {
		return nil, status.DeviceReported(resp.Code, resp.Message)
	}
	return resp.Payload, status.OKStatus()
}

func classifyTransportErr(err error) status.Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return status.New(status.DeadlineExceeded, "rpc call exceeded deadline")
	}
	return status.New(status.Internal, "transport error: %v", err)
}

// Configure lowers cfg and transmits it, per §4.6.
func (d *Device) Configure(ctx context.Context, cfg *signalchain.Config, timeout time.Duration) status.Status {
	if cfg == nil {
		return status.New(status.InvalidArgument, "configure: nil config")
	}
	serialized, st := cfg.Lower()
	if !st.Ok() {
		return st
	}
	wire, err := yaml.Marshal(serialized)
	if err != nil {
		return status.New(status.Internal, "encode configuration: %v", err)
	}

	if _, st := d.call(ctx, "configure", wire, timeout); !st.Ok() {
		return st
	}
	d.mu.Lock()
	d.configured = true
	d.mu.Unlock()
	return status.OKStatus()
}

// Start is idempotent control; it requires a prior successful
// Configure, per the resource model's state-order rule.
func (d *Device) Start(ctx context.Context, timeout time.Duration) status.Status {
	d.mu.RLock()
	configured := d.configured
	d.mu.RUnlock()
	if !configured {
		return status.New(status.FailedPrecondition, "start: device not configured")
	}
	_, st := d.call(ctx, "start", nil, timeout)
	return st
}

// Stop is idempotent control.
func (d *Device) Stop(ctx context.Context, timeout time.Duration) status.Status {
	_, st := d.call(ctx, "stop", nil, timeout)
	return st
}

type wireDeviceInfo struct {
	Config          signalchain.SerializedConfig `yaml:"config"`
	NodeSockets     []NodeSocket                 `yaml:"node_sockets"`
	FirmwareVersion string                       `yaml:"firmware_version"`
}

// Info retrieves current configuration, node socket assignments, and
// firmware info, per §4.6.
func (d *Device) Info(ctx context.Context, timeout time.Duration) (DeviceInfo, status.Status) {
	payload, st := d.call(ctx, "info", nil, timeout)
	if !st.Ok() {
		return DeviceInfo{}, st
	}
	var wire wireDeviceInfo
	if err := yaml.Unmarshal(payload, &wire); err != nil {
		return DeviceInfo{}, status.New(status.Internal, "decode info response: %v", err)
	}

	d.mu.Lock()
	d.nodeSockets = wire.NodeSockets
	d.mu.Unlock()

	return DeviceInfo{
		Config:          wire.Config,
		NodeSockets:     wire.NodeSockets,
		FirmwareVersion: wire.FirmwareVersion,
	}, status.OKStatus()
}

// NodeSocket returns the device-assigned socket for id, if known from
// the most recent Info response. Configure does not update this table.
func (d *Device) NodeSocket(id uint32) (NodeSocket, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ns := range d.nodeSockets {
		if ns.NodeID == id {
			return ns, true
		}
	}
	return NodeSocket{}, false
}

// Query, GetLogs, UpdateSettings, and ListApps are opaque pass-throughs
// that only translate status, per §4.6.
func (d *Device) Query(ctx context.Context, request []byte, timeout time.Duration) ([]byte, status.Status) {
	return d.call(ctx, "query", request, timeout)
}

func (d *Device) GetLogs(ctx context.Context, request []byte, timeout time.Duration) ([]byte, status.Status) {
	return d.call(ctx, "get_logs", request, timeout)
}

func (d *Device) UpdateSettings(ctx context.Context, request []byte, timeout time.Duration) status.Status {
	_, st := d.call(ctx, "update_settings", request, timeout)
	return st
}

func (d *Device) ListApps(ctx context.Context, timeout time.Duration) ([]string, status.Status) {
	payload, st := d.call(ctx, "list_apps", nil, timeout)
	if !st.Ok() {
		return nil, st
	}
	var apps []string
	if err := yaml.Unmarshal(payload, &apps); err != nil {
		return nil, status.New(status.Internal, "decode list_apps response: %v", err)
	}
	return apps, status.OKStatus()
}

// TailLogs consumes a streaming response, invoking onLine for each
// log line received until onLine returns false, the stream reaches
// EOF, or the deadline expires, per §4.6.
func (d *Device) TailLogs(ctx context.Context, level string, onLine func(line string) bool, timeout time.Duration) status.Status {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	wire, err := yaml.Marshal(wireRequest{Op: "tail_logs", Payload: []byte(level)})
	if err != nil {
		return status.New(status.Internal, "encode tail_logs request: %v", err)
	}
	if err := d.transport.Send(ctx, wire); err != nil {
		return classifyTransportErr(err)
	}

	for {
		raw, err := d.transport.Receive(ctx, timeout)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return status.OKStatus()
			}
			return classifyTransportErr(err)
		}
		if !onLine(string(raw)) {
			return status.OKStatus()
		}
	}
}

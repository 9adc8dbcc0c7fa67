package stream

import (
	"context"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sciencecorp/synapse-cpp/internal/deviceclient"
	"github.com/sciencecorp/synapse-cpp/internal/ndtp"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// fakeDeviceTransport is a minimal deviceclient.Transport that replays
// one canned "info" response, just enough to populate a Device's
// node-socket table for the device-bound constructor tests below.
type fakeDeviceTransport struct {
	connected bool
	infoWire  []byte
}

func (f *fakeDeviceTransport) Connect(ctx context.Context, addr string) error {
	f.connected = true
	return nil
}
func (f *fakeDeviceTransport) Disconnect() error { f.connected = false; return nil }
func (f *fakeDeviceTransport) Send(ctx context.Context, data []byte) error { return nil }
func (f *fakeDeviceTransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	return f.infoWire, nil
}
func (f *fakeDeviceTransport) IsConnected() bool { return f.connected }

// wireInfoResponse and wireDeviceInfo mirror the unexported shapes
// deviceclient.Device.Info decodes; duplicated here (YAML field names
// only, no shared type) so this test can script a response without
// reaching into deviceclient's internals.
type wireInfoResponse struct {
	Ok      bool   `yaml:"ok"`
	Payload []byte `yaml:"payload,omitempty"`
}

type wireDeviceInfo struct {
	NodeSockets     []deviceclient.NodeSocket `yaml:"node_sockets"`
	FirmwareVersion string                    `yaml:"firmware_version"`
}

func deviceWithNodeSocket(t *testing.T, nodeID uint32, host string, port uint16) *deviceclient.Device {
	t.Helper()
	payload, err := yaml.Marshal(wireDeviceInfo{NodeSockets: []deviceclient.NodeSocket{{NodeID: nodeID, Host: host, Port: port}}})
	if err != nil {
		t.Fatalf("marshal device info: %v", err)
	}
	wire, err := yaml.Marshal(wireInfoResponse{Ok: true, Payload: payload})
	if err != nil {
		t.Fatalf("marshal info response: %v", err)
	}

	ft := &fakeDeviceTransport{infoWire: wire}
	dev := deviceclient.New(ft, "device.local:1234")
	if _, st := dev.Info(context.Background(), time.Second); !st.Ok() {
		t.Fatalf("info failed: %v", st)
	}
	return dev
}

func sampleBroadbandFrame(t *testing.T, seq uint16) []byte {
	t.Helper()
	msg := ndtp.Message{
		Header: ndtp.Header{Version: 1, DataType: ndtp.DataTypeBroadband, Timestamp: 42, SeqNumber: seq},
		Broadband: &ndtp.Broadband{
			BitWidth:   12,
			SampleRate: 1,
			IsSigned:   false,
			Channels: []ndtp.ChannelSamples{
				{ChannelID: 0, Samples: []int64{1, 2, 3}},
			},
		},
	}
	buf, st := msg.Pack()
	if !st.Ok() {
		t.Fatalf("pack failed: %v", st)
	}
	return buf
}

func TestSourceToSinkRoundTrip(t *testing.T) {
	sink := NewSink(Destination{Host: "127.0.0.1", Port: 0})
	defer sink.Close()

	addr, st := sink.LocalAddr()
	if !st.Ok() {
		t.Fatalf("local addr: %v", st)
	}

	source := NewSource(Destination{Host: "127.0.0.1", Port: uint16(addr.Port)})
	defer source.Close()

	frame := sampleBroadbandFrame(t, 7)
	if st := source.Write(frame); !st.Ok() {
		t.Fatalf("write failed: %v", st)
	}

	var bb *ndtp.BroadbandRecord
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		record, _, _, _, st := sink.Read()
		if st.Ok() {
			bb = record
			break
		}
		if st.Code != status.Unavailable {
			t.Fatalf("unexpected read error: %v", st)
		}
	}
	if bb == nil {
		t.Fatalf("never received a broadband record")
	}
	if bb.SeqNumber != 7 || len(bb.Channels) != 1 {
		t.Fatalf("unexpected record: %+v", bb)
	}
	if sink.Stats.Snapshot().PacketsReceived != 1 {
		t.Fatalf("expected 1 packet recorded in stats")
	}
}

func TestSinkReadReturnsUnavailableWhenEmpty(t *testing.T) {
	sink := NewSink(Destination{Host: "127.0.0.1", Port: 0})
	defer sink.Close()

	_, _, _, _, st := sink.Read()
	if st.Ok() || st.Code != status.Unavailable {
		t.Fatalf("expected unavailable on empty socket, got %v", st)
	}
}

func TestSourceWriteRejectsUnparseableHost(t *testing.T) {
	source := NewSource(Destination{Host: "not-an-ip", Port: 1234})
	defer source.Close()

	st := source.Write([]byte{0x01})
	if st.Ok() || st.Code != status.InvalidArgument {
		t.Fatalf("expected invalid_argument, got %v", st)
	}
}

func TestNewSinkForDeviceFailsPreconditionBeforeConfigured(t *testing.T) {
	dev := deviceclient.New(&fakeDeviceTransport{}, "device.local:1234")

	_, st := NewSinkForDevice(dev, 3, false)
	if st.Ok() || st.Code != status.FailedPrecondition {
		t.Fatalf("expected failed_precondition before the device reports node sockets, got %v", st)
	}

	_, st = NewSourceForDevice(dev, 3)
	if st.Ok() || st.Code != status.FailedPrecondition {
		t.Fatalf("expected failed_precondition before the device reports node sockets, got %v", st)
	}
}

func TestNewSinkForDeviceUsesDeviceAssignedSocket(t *testing.T) {
	dev := deviceWithNodeSocket(t, 3, "127.0.0.1", 6000)

	sink, st := NewSinkForDevice(dev, 3, false)
	if !st.Ok() {
		t.Fatalf("new sink for device failed: %v", st)
	}
	defer sink.Close()
	if sink.dest.Host != "127.0.0.1" || sink.dest.Port != 6000 {
		t.Fatalf("unexpected sink destination: %+v", sink.dest)
	}

	source, st := NewSourceForDevice(dev, 3)
	if !st.Ok() {
		t.Fatalf("new source for device failed: %v", st)
	}
	defer source.Close()
	if source.dest.Host != "127.0.0.1" || source.dest.Port != 6000 {
		t.Fatalf("unexpected source destination: %+v", source.dest)
	}

	if _, st := NewSinkForDevice(dev, 99, false); st.Ok() || st.Code != status.FailedPrecondition {
		t.Fatalf("expected failed_precondition for an unknown node id, got %v", st)
	}
}

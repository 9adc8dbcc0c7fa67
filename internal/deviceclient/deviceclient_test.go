package deviceclient

import (
	"context"
	"io"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sciencecorp/synapse-cpp/internal/node"
	"github.com/sciencecorp/synapse-cpp/internal/signalchain"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// fakeTransport is an in-memory Transport that replays canned
// responses for each op, grounded on the teacher's test style of
// exercising the Client against a scripted transport instead of a
// live socket.
type fakeTransport struct {
	connected bool
	responses map[string][]byte
	lines     []string
	lineIdx   int
}

func (f *fakeTransport) Connect(ctx context.Context, addr string) error {
	f.connected = true
	return nil
}
func (f *fakeTransport) Disconnect() error {
	f.connected = false
	return nil
}
func (f *fakeTransport) Send(ctx context.Context, data []byte) error {
	var req wireRequest
	return yaml.Unmarshal(data, &req)
}
func (f *fakeTransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if f.lines != nil {
		if f.lineIdx >= len(f.lines) {
			return nil, io.EOF
		}
		line := f.lines[f.lineIdx]
		f.lineIdx++
		return []byte(line), nil
	}
	return f.responses["*"], nil
}
func (f *fakeTransport) IsConnected() bool { return f.connected }

func okResponse(t *testing.T, payload []byte) []byte {
	t.Helper()
	wire, err := yaml.Marshal(wireResponse{Ok: true, Payload: payload})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return wire
}

func TestConfigureThenStartRequiresConfigured(t *testing.T) {
	ft := &fakeTransport{responses: map[string][]byte{}}
	d := New(ft, "device.local:1234")

	cfg := signalchain.New()
	cfg.Add(node.Node{Kind: node.KindBroadbandSource, Payload: node.BroadbandSourcePayload{}}, 0)

	if st := d.Start(context.Background(), 0); st.Ok() {
		t.Fatalf("expected failed_precondition before configure")
	}

	ft.responses["*"] = okResponse(t, nil)
	if st := d.Configure(context.Background(), cfg, time.Second); !st.Ok() {
		t.Fatalf("configure failed: %v", st)
	}
	if st := d.Start(context.Background(), time.Second); !st.Ok() {
		t.Fatalf("start after configure failed: %v", st)
	}
}

func TestDeviceReportedErrorSurfacesAsInternal(t *testing.T) {
	wire, err := yaml.Marshal(wireResponse{Ok: false, Code: 5, Message: "no such node"})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	ft := &fakeTransport{responses: map[string][]byte{"*": wire}}
	d := New(ft, "device.local:1234")

	_, st := d.Query(context.Background(), nil, time.Second)
	if st.Ok() {
		t.Fatalf("expected device-reported error")
	}
	if st.Code != status.Internal {
		t.Fatalf("expected internal, got %v", st.Code)
	}
}

func TestTailLogsStopsAtEOF(t *testing.T) {
	ft := &fakeTransport{lines: []string{"line one", "line two"}}
	d := New(ft, "device.local:1234")

	var got []string
	st := d.TailLogs(context.Background(), "info", func(line string) bool {
		got = append(got, line)
		return true
	}, time.Second)
	if !st.Ok() {
		t.Fatalf("tail_logs failed: %v", st)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
}

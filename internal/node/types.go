// Package node implements Node from §3/§4.4: an abstract entity with a
// stable integer identity, a closed kind enumeration, and a
// kind-specific payload that is opaque to the wire codec (the exact
// domain fields — cutoff frequencies, channel ids, gains — are
// declared non-goals of the core spec; this package gives them a home
// as typed Go structs so the rest of the client has something concrete
// to build against).
//
// Grounded on internal/cip/catalog/types.go's Entry struct (a typed
// catalog record with a tag selecting its shape) and
// internal/cip/catalog/loader.go's YAML envelope round-trip.
package node

import (
	"github.com/sciencecorp/synapse-cpp/internal/channelmask"
	"github.com/sciencecorp/synapse-cpp/internal/signal"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// Kind is the closed node-kind enumeration from §3. The set is fixed
// and known at build time (§4.4): a Node's catalog entry is one of
// exactly these kinds.
type Kind string

const (
	KindBroadbandSource Kind = "broadband_source"
	KindSpikeSource     Kind = "spike_source"
	KindElectricalStim  Kind = "electrical_stim"
	KindOpticalStim     Kind = "optical_stim"
	KindSpectralFilter  Kind = "spectral_filter"
	KindSpikeDetector   Kind = "spike_detector"
	KindSpikeBinner     Kind = "spike_binner"
	KindDiskWriter      Kind = "disk_writer"
	KindStreamIn        Kind = "stream_in"
	KindStreamOut       Kind = "stream_out"
)

// Payload is implemented by every concrete kind's payload struct. Each
// payload knows how to lower itself into the serialized envelope
// (setting exactly one of the envelope's variant fields) per §4.4.1.
type Payload interface {
	Kind() Kind
	applyToEnvelope(*Envelope)
}

// Node is the pair (kind, payload) from §3, plus the stable integer
// identity assigned by the enclosing Config. ID == 0 means unassigned.
type Node struct {
	ID      uint32
	Kind    Kind
	Payload Payload
}

// Lower translates a Node into its serialized envelope, per §4.4.1
// item 1. It fails if Payload is nil or its Kind doesn't match
// n.Kind.
func (n Node) Lower() (Envelope, status.Status) {
	if n.Payload == nil {
		return Envelope{}, status.New(status.InvalidArgument, "node %d has no payload", n.ID)
	}
	if n.Payload.Kind() != n.Kind {
		return Envelope{}, status.New(status.InvalidArgument, "node %d payload kind %q does not match node kind %q", n.ID, n.Payload.Kind(), n.Kind)
	}
	if v, ok := n.Payload.(interface{ validate() status.Status }); ok {
		if st := v.validate(); !st.Ok() {
			return Envelope{}, st
		}
	}
	env := Envelope{ID: n.ID, Kind: n.Kind}
	n.Payload.applyToEnvelope(&env)
	return env, status.OKStatus()
}

// BroadbandSourcePayload sources continuous voltage samples.
type BroadbandSourcePayload struct {
	Channels   channelmask.Mask
	SampleRate uint32
}

func (BroadbandSourcePayload) Kind() Kind { return KindBroadbandSource }
func (p BroadbandSourcePayload) applyToEnvelope(e *Envelope) {
	e.BroadbandSource = &p
}

// SpikeSourcePayload sources detected spike events.
type SpikeSourcePayload struct {
	Channels channelmask.Mask
}

func (SpikeSourcePayload) Kind() Kind { return KindSpikeSource }
func (p SpikeSourcePayload) applyToEnvelope(e *Envelope) {
	e.SpikeSource = &p
}

// ElectricalStimPayload drives an electrical stimulation output.
type ElectricalStimPayload struct {
	ChannelID   uint64
	AmplitudeUA float32
}

func (ElectricalStimPayload) Kind() Kind { return KindElectricalStim }
func (p ElectricalStimPayload) applyToEnvelope(e *Envelope) {
	e.ElectricalStim = &p
}

// OpticalStimPayload drives an optical stimulation output.
type OpticalStimPayload struct {
	ChannelID uint64
	PowerMw   float32
}

func (OpticalStimPayload) Kind() Kind { return KindOpticalStim }
func (p OpticalStimPayload) applyToEnvelope(e *Envelope) {
	e.OpticalStim = &p
}

// SpectralFilterPayload is a bandpass/notch filter node. Its Signal
// carries the tagged electrode/pixel config from §3/§4.3; the
// electrode variant's LowCutoffHz/HighCutoffHz set the passband.
type SpectralFilterPayload struct {
	Signal signal.Signal
}

func (SpectralFilterPayload) Kind() Kind { return KindSpectralFilter }
func (p SpectralFilterPayload) applyToEnvelope(e *Envelope) {
	e.SpectralFilter = &p
}

// validate enforces the Signal tagged-variant invariant from §4.3
// before the payload is lowered onto the wire.
func (p SpectralFilterPayload) validate() status.Status {
	return p.Signal.Validate()
}

// SpikeDetectorPayload thresholds a broadband stream into spike events.
type SpikeDetectorPayload struct {
	ThresholdUV float32
}

func (SpikeDetectorPayload) Kind() Kind { return KindSpikeDetector }
func (p SpikeDetectorPayload) applyToEnvelope(e *Envelope) {
	e.SpikeDetector = &p
}

// SpikeBinnerPayload bins spike events into per-interval counts.
type SpikeBinnerPayload struct {
	BinSizeMs uint32
}

func (SpikeBinnerPayload) Kind() Kind { return KindSpikeBinner }
func (p SpikeBinnerPayload) applyToEnvelope(e *Envelope) {
	e.SpikeBinner = &p
}

// DiskWriterPayload persists a stream to on-device storage.
type DiskWriterPayload struct {
	Path string
}

func (DiskWriterPayload) Kind() Kind { return KindDiskWriter }
func (p DiskWriterPayload) applyToEnvelope(e *Envelope) {
	e.DiskWriter = &p
}

// StreamInPayload receives an NDTP stream from the host.
type StreamInPayload struct {
	BindHost  string
	BindPort  uint16
	Multicast bool
}

func (StreamInPayload) Kind() Kind { return KindStreamIn }
func (p StreamInPayload) applyToEnvelope(e *Envelope) {
	e.StreamIn = &p
}

// StreamOutPayload emits an NDTP stream to the host.
type StreamOutPayload struct {
	DestHost  string
	DestPort  uint16
	Multicast bool
}

func (StreamOutPayload) Kind() Kind { return KindStreamOut }
func (p StreamOutPayload) applyToEnvelope(e *Envelope) {
	e.StreamOut = &p
}

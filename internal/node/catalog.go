package node

import "github.com/sciencecorp/synapse-cpp/internal/status"

// Envelope is the serialized, tagged-field-presence form of a Node:
// Kind names which single payload field is populated. This mirrors
// the teacher's catalog.Entry shape, where an EPATH.Kind selects which
// of the Entry's optional fields are meaningful.
type Envelope struct {
	ID   uint32 `yaml:"id"`
	Kind Kind   `yaml:"kind"`

	BroadbandSource *BroadbandSourcePayload `yaml:"broadband_source,omitempty"`
	SpikeSource     *SpikeSourcePayload     `yaml:"spike_source,omitempty"`
	ElectricalStim  *ElectricalStimPayload  `yaml:"electrical_stim,omitempty"`
	OpticalStim     *OpticalStimPayload     `yaml:"optical_stim,omitempty"`
	SpectralFilter  *SpectralFilterPayload  `yaml:"spectral_filter,omitempty"`
	SpikeDetector   *SpikeDetectorPayload   `yaml:"spike_detector,omitempty"`
	SpikeBinner     *SpikeBinnerPayload     `yaml:"spike_binner,omitempty"`
	DiskWriter      *DiskWriterPayload      `yaml:"disk_writer,omitempty"`
	StreamIn        *StreamInPayload        `yaml:"stream_in,omitempty"`
	StreamOut       *StreamOutPayload       `yaml:"stream_out,omitempty"`
}

// factories dispatches on Kind to reconstruct a Node from its
// envelope. Every Kind constant must have an entry here; Reconstruct
// treats a missing entry as invalid_argument rather than a panic, so the
// table and the enum can drift during development without crashing.
var factories = map[Kind]func(Envelope) (Payload, status.Status){
	KindBroadbandSource: func(e Envelope) (Payload, status.Status) {
		if e.BroadbandSource == nil {
			return nil, missingVariant(KindBroadbandSource)
		}
		return *e.BroadbandSource, status.OKStatus()
	},
	KindSpikeSource: func(e Envelope) (Payload, status.Status) {
		if e.SpikeSource == nil {
			return nil, missingVariant(KindSpikeSource)
		}
		return *e.SpikeSource, status.OKStatus()
	},
	KindElectricalStim: func(e Envelope) (Payload, status.Status) {
		if e.ElectricalStim == nil {
			return nil, missingVariant(KindElectricalStim)
		}
		return *e.ElectricalStim, status.OKStatus()
	},
	KindOpticalStim: func(e Envelope) (Payload, status.Status) {
		if e.OpticalStim == nil {
			return nil, missingVariant(KindOpticalStim)
		}
		return *e.OpticalStim, status.OKStatus()
	},
	KindSpectralFilter: func(e Envelope) (Payload, status.Status) {
		if e.SpectralFilter == nil {
			return nil, missingVariant(KindSpectralFilter)
		}
		return *e.SpectralFilter, status.OKStatus()
	},
	KindSpikeDetector: func(e Envelope) (Payload, status.Status) {
		if e.SpikeDetector == nil {
			return nil, missingVariant(KindSpikeDetector)
		}
		return *e.SpikeDetector, status.OKStatus()
	},
	KindSpikeBinner: func(e Envelope) (Payload, status.Status) {
		if e.SpikeBinner == nil {
			return nil, missingVariant(KindSpikeBinner)
		}
		return *e.SpikeBinner, status.OKStatus()
	},
	KindDiskWriter: func(e Envelope) (Payload, status.Status) {
		if e.DiskWriter == nil {
			return nil, missingVariant(KindDiskWriter)
		}
		return *e.DiskWriter, status.OKStatus()
	},
	KindStreamIn: func(e Envelope) (Payload, status.Status) {
		if e.StreamIn == nil {
			return nil, missingVariant(KindStreamIn)
		}
		return *e.StreamIn, status.OKStatus()
	},
	KindStreamOut: func(e Envelope) (Payload, status.Status) {
		if e.StreamOut == nil {
			return nil, missingVariant(KindStreamOut)
		}
		return *e.StreamOut, status.OKStatus()
	},
}

func missingVariant(k Kind) status.Status {
	return status.New(status.InvalidArgument, "envelope declares kind %q but its payload field is unset", k)
}

// Reconstruct is the factory dispatch from §4.4.1 item 2: given a
// serialized envelope, build the matching Node. An unrecognized Kind
// is invalid_argument, per §4.4.
func Reconstruct(env Envelope) (Node, status.Status) {
	build, ok := factories[env.Kind]
	if !ok {
		return Node{}, status.New(status.InvalidArgument, "unrecognized node kind %q", env.Kind)
	}
	payload, st := build(env)
	if !st.Ok() {
		return Node{}, st
	}
	return Node{ID: env.ID, Kind: env.Kind, Payload: payload}, status.OKStatus()
}

// Kinds returns every registered Kind, in a stable order, for catalog
// enumeration and diagnostics.
func Kinds() []Kind {
	return []Kind{
		KindBroadbandSource,
		KindSpikeSource,
		KindElectricalStim,
		KindOpticalStim,
		KindSpectralFilter,
		KindSpikeDetector,
		KindSpikeBinner,
		KindDiskWriter,
		KindStreamIn,
		KindStreamOut,
	}
}

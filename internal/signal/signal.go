// Package signal implements ChannelSpec and Signal from §3: a tagged
// variant over an electrode-array signal and a pixel-array signal,
// with a serialized form mirroring the teacher's tagged-field-presence
// idiom in internal/cip/catalog/types.go (EPATH.Kind selecting which
// optional fields apply).
package signal

import "github.com/sciencecorp/synapse-cpp/internal/status"

// ChannelSpec identifies one recording channel and its electrode/
// reference pair.
type ChannelSpec struct {
	ID          uint64
	ElectrodeID uint64
	ReferenceID uint64
}

// Electrodes is the Signal.Electrodes variant.
type Electrodes struct {
	Channels     []ChannelSpec
	LowCutoffHz  float32
	HighCutoffHz float32
}

// Pixels is the Signal.Pixels variant.
type Pixels struct {
	PixelMask []uint32
}

// Signal is the tagged variant from §3: exactly one of Electrodes or
// Pixels is set.
type Signal struct {
	Electrodes *Electrodes
	Pixels     *Pixels
}

// Validate enforces the "exactly one variant present" invariant.
func (s Signal) Validate() status.Status {
	has := 0
	if s.Electrodes != nil {
		has++
	}
	if s.Pixels != nil {
		has++
	}
	if has != 1 {
		return status.New(status.InvalidArgument, "signal must set exactly one of electrode or pixel, got %d", has)
	}
	return status.OKStatus()
}

// Serialized is the on-the-wire tagged form: a config translator
// writes exactly one of Electrode/Pixel, leaving the other nil.
type Serialized struct {
	Electrode *SerializedElectrodes `yaml:"electrode,omitempty"`
	Pixel     *SerializedPixels     `yaml:"pixel,omitempty"`
}

// SerializedElectrodes is the wire/YAML form of Electrodes.
type SerializedElectrodes struct {
	Channels     []SerializedChannelSpec `yaml:"channels"`
	LowCutoffHz  float32                 `yaml:"low_cutoff_hz"`
	HighCutoffHz float32                 `yaml:"high_cutoff_hz"`
}

// SerializedChannelSpec is the wire/YAML form of ChannelSpec.
type SerializedChannelSpec struct {
	ID          uint64 `yaml:"id"`
	ElectrodeID uint64 `yaml:"electrode_id"`
	ReferenceID uint64 `yaml:"reference_id"`
}

// SerializedPixels is the wire/YAML form of Pixels.
type SerializedPixels struct {
	PixelMask []uint32 `yaml:"pixel_mask"`
}

// ToSerialized lowers a validated Signal into its tagged serialized form.
func (s Signal) ToSerialized() (Serialized, status.Status) {
	if st := s.Validate(); !st.Ok() {
		return Serialized{}, st
	}
	if s.Electrodes != nil {
		chans := make([]SerializedChannelSpec, len(s.Electrodes.Channels))
		for i, c := range s.Electrodes.Channels {
			chans[i] = SerializedChannelSpec{ID: c.ID, ElectrodeID: c.ElectrodeID, ReferenceID: c.ReferenceID}
		}
		return Serialized{Electrode: &SerializedElectrodes{
			Channels:     chans,
			LowCutoffHz:  s.Electrodes.LowCutoffHz,
			HighCutoffHz: s.Electrodes.HighCutoffHz,
		}}, status.OKStatus()
	}
	return Serialized{Pixel: &SerializedPixels{PixelMask: s.Pixels.PixelMask}}, status.OKStatus()
}

// FromSerialized reconstructs a Signal from its tagged serialized form,
// rejecting the case where neither or both variants are set, per §4.3.
func FromSerialized(s Serialized) (Signal, status.Status) {
	has := 0
	if s.Electrode != nil {
		has++
	}
	if s.Pixel != nil {
		has++
	}
	if has != 1 {
		return Signal{}, status.New(status.InvalidArgument, "serialized signal must set exactly one of electrode or pixel, got %d", has)
	}

	if s.Electrode != nil {
		chans := make([]ChannelSpec, len(s.Electrode.Channels))
		for i, c := range s.Electrode.Channels {
			chans[i] = ChannelSpec{ID: c.ID, ElectrodeID: c.ElectrodeID, ReferenceID: c.ReferenceID}
		}
		return Signal{Electrodes: &Electrodes{
			Channels:     chans,
			LowCutoffHz:  s.Electrode.LowCutoffHz,
			HighCutoffHz: s.Electrode.HighCutoffHz,
		}}, status.OKStatus()
	}
	return Signal{Pixels: &Pixels{PixelMask: s.Pixel.PixelMask}}, status.OKStatus()
}

// MarshalYAML emits a Signal as its tagged serialized form, so a
// Signal-typed struct field round-trips through YAML directly.
func (s Signal) MarshalYAML() (interface{}, error) {
	ser, st := s.ToSerialized()
	if !st.Ok() {
		return nil, st
	}
	return ser, nil
}

// UnmarshalYAML reconstructs a Signal from its tagged serialized form.
func (s *Signal) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ser Serialized
	if err := unmarshal(&ser); err != nil {
		return err
	}
	sig, st := FromSerialized(ser)
	if !st.Ok() {
		return st
	}
	*s = sig
	return nil
}

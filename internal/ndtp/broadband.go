package ndtp

import (
	"github.com/sciencecorp/synapse-cpp/internal/bitcodec"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// ChannelSamples is one channel's worth of packed broadband samples,
// per §3's NDTPPayload.Broadband.ChannelSamples.
type ChannelSamples struct {
	ChannelID uint32 // fits in 24 bits on the wire
	Samples   []int64
}

// Broadband is the NDTPPayload.Broadband variant from §3.
type Broadband struct {
	IsSigned   bool
	BitWidth   uint8 // <= 127, packed with the sign bit into one byte
	SampleRate uint16
	Channels   []ChannelSamples
}

// Pack appends the broadband payload encoding per §4.2 to dst.
func (b Broadband) Pack(dst []byte) ([]byte, status.Status) {
	if b.BitWidth == 0 || b.BitWidth > 127 {
		return dst, status.New(status.InvalidArgument, "bit_width must be in [1,127], got %d", b.BitWidth)
	}

	buf := dst
	signBit := uint8(0)
	if b.IsSigned {
		signBit = 1
	}
	buf = append(buf, (b.BitWidth<<1)|signBit)
	buf = appendUint24(buf, uint32(len(b.Channels)))
	buf = appendUint16(buf, b.SampleRate)

	for _, ch := range b.Channels {
		buf = appendUint24(buf, ch.ChannelID)
		buf = appendUint16(buf, uint16(len(ch.Samples)))

		packed, _, st := bitcodec.Pack(ch.Samples, int(b.BitWidth), nil, 0, b.IsSigned, false)
		if !st.Ok() {
			return dst, st
		}
		buf = append(buf, packed...)
	}

	return buf, status.OKStatus()
}

// UnpackBroadband decodes a broadband payload from the front of data
// and returns it along with the remaining bytes.
func UnpackBroadband(data []byte) (Broadband, []byte, status.Status) {
	if len(data) < 6 {
		return Broadband{}, nil, status.New(status.Internal, "truncated broadband payload header: got %d bytes, need 6", len(data))
	}

	b := Broadband{
		IsSigned: data[0]&0x01 != 0,
		BitWidth: data[0] >> 1,
	}
	channelCount := readUint24(data[1:4])
	b.SampleRate = readUint16(data[4:6])

	rest := data[6:]
	for i := uint32(0); i < channelCount; i++ {
		if len(rest) < 5 {
			return Broadband{}, nil, status.New(status.Internal, "truncated broadband payload mid-channel %d", i)
		}
		channelID := readUint24(rest[0:3])
		sampleCount := readUint16(rest[3:5])
		rest = rest[5:]

		nBytes := (int(sampleCount)*int(b.BitWidth) + 7) / 8
		if len(rest) < nBytes {
			return Broadband{}, nil, status.New(status.Internal, "truncated broadband payload mid-channel %d: need %d bytes, have %d", i, nBytes, len(rest))
		}

		samples, _, st := bitcodec.Unpack(rest[:nBytes], int(b.BitWidth), int(sampleCount), 0, b.IsSigned, false)
		if !st.Ok() {
			return Broadband{}, nil, st
		}
		rest = rest[nBytes:]

		b.Channels = append(b.Channels, ChannelSamples{ChannelID: channelID, Samples: samples})
	}

	return b, rest, status.OKStatus()
}

func appendUint24(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>16), byte(v>>8), byte(v))
}

func appendUint16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

func readUint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func readUint16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

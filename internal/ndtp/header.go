package ndtp

import (
	"encoding/binary"

	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// DataType selects the NDTP payload variant carried by a message.
type DataType uint8

const (
	DataTypeBroadband  DataType = 0
	DataTypeSpiketrain DataType = 1
)

// CurrentVersion is the only header version this codec accepts on
// unpack, per §4.2.
const CurrentVersion uint8 = 1

// HeaderSize is the fixed wire size of NDTPHeader: version(1) +
// data_type(1) + timestamp(8) + seq_number(2) + padding(3).
const HeaderSize = 15

// Header is NDTPHeader from §3: {version, data_type, timestamp, seq_number}.
type Header struct {
	Version   uint8
	DataType  DataType
	Timestamp uint64
	SeqNumber uint16
}

// Pack appends the 15-byte header encoding to dst and returns the
// grown buffer. Timestamp is written in the host's native byte order
// (§9: "do not rely on host byte order for any on-wire field" applies
// to the explicitly-shifted sample/channel fields; the header's
// timestamp is the one field the wire format leaves native, per §4.2's
// literal "(8, native)"). seq_number is always little-endian on the
// wire regardless of host endianness.
func (h Header) Pack(dst []byte) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Version
	buf[1] = uint8(h.DataType)
	binary.NativeEndian.PutUint64(buf[2:10], h.Timestamp)
	binary.LittleEndian.PutUint16(buf[10:12], h.SeqNumber)
	// buf[12:15] padding, left zero.
	return append(dst, buf...)
}

// UnpackHeader decodes a Header from the front of data and returns it
// along with the remaining (post-header) bytes.
func UnpackHeader(data []byte) (Header, []byte, status.Status) {
	if len(data) < HeaderSize {
		return Header{}, nil, status.New(status.InvalidArgument, "truncated header: got %d bytes, need %d", len(data), HeaderSize)
	}

	h := Header{
		Version:   data[0],
		DataType:  DataType(data[1]),
		Timestamp: binary.NativeEndian.Uint64(data[2:10]),
		SeqNumber: binary.LittleEndian.Uint16(data[10:12]),
	}
	if h.Version != CurrentVersion {
		return Header{}, nil, status.New(status.InvalidArgument, "unsupported header version %d, want %d", h.Version, CurrentVersion)
	}

	return h, data[HeaderSize:], status.OKStatus()
}

package ndtp

import (
	"encoding/binary"

	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// Message is NDTPMessage from §3: header + typed payload + crc. Exactly
// one of Broadband or Spiketrain is set, selected by Header.DataType.
type Message struct {
	Header     Header
	Broadband  *Broadband
	Spiketrain *Spiketrain
}

// Pack encodes the full frame: header_bytes || payload_bytes ||
// crc(2, little-endian), per §4.2/§6.
func (m Message) Pack() ([]byte, status.Status) {
	var buf []byte
	buf = m.Header.Pack(buf)

	var st status.Status
	switch m.Header.DataType {
	case DataTypeBroadband:
		if m.Broadband == nil {
			return nil, status.New(status.InvalidArgument, "data_type broadband requires a Broadband payload")
		}
		buf, st = m.Broadband.Pack(buf)
	case DataTypeSpiketrain:
		if m.Spiketrain == nil {
			return nil, status.New(status.InvalidArgument, "data_type spiketrain requires a Spiketrain payload")
		}
		buf, st = m.Spiketrain.Pack(buf)
	default:
		return nil, status.New(status.Unimplemented, "unknown data_type %d", m.Header.DataType)
	}
	if !st.Ok() {
		return nil, st
	}

	crc := CRC16(buf)
	var crcBytes [2]byte
	binary.LittleEndian.PutUint16(crcBytes[:], crc)
	return append(buf, crcBytes[:]...), status.OKStatus()
}

// Unpack decodes a full frame, verifying the CRC before returning the
// message. Failure modes per §4.2: truncated header -> invalid_argument;
// truncated payload mid-channel -> internal; CRC mismatch -> data_loss;
// unknown data_type -> unimplemented.
func Unpack(data []byte) (Message, status.Status) {
	header, rest, st := UnpackHeader(data)
	if !st.Ok() {
		return Message{}, st
	}

	prefixLen := len(data) - 2
	if prefixLen < HeaderSize {
		return Message{}, status.New(status.Internal, "frame too short for CRC trailer")
	}
	wantCRC := binary.LittleEndian.Uint16(data[prefixLen:])
	gotCRC := CRC16(data[:prefixLen])
	if gotCRC != wantCRC {
		return Message{}, status.New(status.DataLoss, "crc mismatch: got 0x%04X, want 0x%04X", gotCRC, wantCRC)
	}

	payload := rest[:len(rest)-2]

	msg := Message{Header: header}
	switch header.DataType {
	case DataTypeBroadband:
		bb, remaining, st := UnpackBroadband(payload)
		if !st.Ok() {
			return Message{}, st
		}
		if len(remaining) != 0 {
			return Message{}, status.New(status.Internal, "%d trailing bytes after broadband payload", len(remaining))
		}
		msg.Broadband = &bb
	case DataTypeSpiketrain:
		sp, remaining, st := UnpackSpiketrain(payload)
		if !st.Ok() {
			return Message{}, st
		}
		if len(remaining) != 0 {
			return Message{}, status.New(status.Internal, "%d trailing bytes after spiketrain payload", len(remaining))
		}
		msg.Spiketrain = &sp
	default:
		return Message{}, status.New(status.Unimplemented, "unknown data_type %d", header.DataType)
	}

	return msg, status.OKStatus()
}

package ndtp

import (
	"encoding/binary"

	"github.com/sciencecorp/synapse-cpp/internal/bitcodec"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// spikeBinBitWidth is the fixed bit width BW of each packed spike
// count, per §3/§4.2.
const spikeBinBitWidth = 2

// spikeBinMax is the largest value representable at spikeBinBitWidth:
// 2^BW - 1.
const spikeBinMax = (1 << spikeBinBitWidth) - 1

// Spiketrain is the NDTPPayload.Spiketrain variant from §3. BinSizeMs
// is carried for the decoded record's convenience but has no slot in
// the legacy wire layout (§9 open question): Pack ignores it and
// UnpackSpiketrain always leaves it 0, so it is never round-tripped.
type Spiketrain struct {
	BinSizeMs   uint32
	SpikeCounts []int64
}

// Pack appends the spiketrain payload encoding per §4.2 to dst. Each
// count is clamped to spikeBinMax before packing, per §4.2's "clamped
// to 3 on pack".
func (s Spiketrain) Pack(dst []byte) ([]byte, status.Status) {
	clamped := make([]int64, len(s.SpikeCounts))
	for i, v := range s.SpikeCounts {
		if v > spikeBinMax {
			v = spikeBinMax
		}
		if v < 0 {
			v = 0
		}
		clamped[i] = v
	}

	buf := dst
	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], uint32(len(clamped)))
	buf = append(buf, countBytes[:]...)

	packed, _, st := bitcodec.Pack(clamped, spikeBinBitWidth, nil, 0, false, false)
	if !st.Ok() {
		return dst, st
	}
	return append(buf, packed...), status.OKStatus()
}

// UnpackSpiketrain decodes a spiketrain payload from the front of data
// and returns it along with the remaining bytes.
func UnpackSpiketrain(data []byte) (Spiketrain, []byte, status.Status) {
	if len(data) < 4 {
		return Spiketrain{}, nil, status.New(status.Internal, "truncated spiketrain payload header: got %d bytes, need 4", len(data))
	}

	count := binary.LittleEndian.Uint32(data[0:4])
	rest := data[4:]

	nBytes := (int(count)*spikeBinBitWidth + 7) / 8
	if len(rest) < nBytes {
		return Spiketrain{}, nil, status.New(status.Internal, "truncated spiketrain payload: need %d bytes, have %d", nBytes, len(rest))
	}

	counts, _, st := bitcodec.Unpack(rest[:nBytes], spikeBinBitWidth, int(count), 0, false, false)
	if !st.Ok() {
		return Spiketrain{}, nil, st
	}

	return Spiketrain{SpikeCounts: counts}, rest[nBytes:], status.OKStatus()
}

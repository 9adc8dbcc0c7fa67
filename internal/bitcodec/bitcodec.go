// Package bitcodec packs and unpacks arbitrary-width signed/unsigned
// integers into byte streams at arbitrary bit offsets. It is the
// lowest-level primitive of the NDTP wire format (§4.1): everything
// else in internal/ndtp is built on Pack/Unpack.
//
// No third-party bit-packing library appears anywhere in the retrieval
// corpus this module was built against, so this package is necessarily
// standard-library only (see DESIGN.md).
package bitcodec

import "github.com/sciencecorp/synapse-cpp/internal/status"

// Pack appends each value in values as bitWidth bits into existing,
// starting at startBit bits within the last byte of existing (i.e.
// existing's final byte has startBit bits already occupied from its
// low end for little-endian or from its high end for big-endian,
// matching whichever bit order was used to produce existing). It
// returns the grown buffer and the ending bit offset, (startBit +
// len(values)*bitWidth) mod 8.
func Pack(values []int64, bitWidth int, existing []byte, startBit int, isSigned bool, littleEndian bool) ([]byte, int, status.Status) {
	if bitWidth < 1 {
		return existing, 0, status.New(status.InvalidArgument, "bit_width must be >= 1, got %d", bitWidth)
	}
	if startBit < 0 || startBit > 7 {
		return existing, 0, status.New(status.InvalidArgument, "starting_bit_offset must be in [0,7], got %d", startBit)
	}

	lo, hi := valueRange(bitWidth, isSigned)
	for _, v := range values {
		if v < lo || v > hi {
			return existing, 0, status.New(status.InvalidArgument, "value %d out of range [%d,%d] for bit_width %d", v, lo, hi, bitWidth)
		}
	}

	buf := existing
	bitPos := startBit

	for _, v := range values {
		residue := toResidue(v, bitWidth)
		buf, bitPos = appendBits(buf, bitPos, residue, bitWidth, littleEndian)
	}

	return buf, bitPos % 8, status.OKStatus()
}

// Unpack reads count values of bitWidth bits each from data, starting at
// startBit bits into data[0]. count == 0 means "consume the whole
// buffer". It returns the decoded values, the ending bit offset, and
// the status.
func Unpack(data []byte, bitWidth int, count int, startBit int, isSigned bool, littleEndian bool) ([]int64, int, status.Status) {
	if bitWidth < 1 {
		return nil, 0, status.New(status.InvalidArgument, "bit_width must be >= 1, got %d", bitWidth)
	}
	if startBit < 0 || startBit > 7 {
		return nil, 0, status.New(status.InvalidArgument, "starting_bit_offset must be in [0,7], got %d", startBit)
	}

	totalBits := len(data)*8 - startBit

	if count > 0 {
		needed := count * bitWidth
		if needed > totalBits {
			return nil, 0, status.New(status.InvalidArgument, "insufficient bytes: need %d bits, have %d", needed, totalBits)
		}
	} else {
		if totalBits%bitWidth != 0 {
			return nil, 0, status.New(status.InvalidArgument, "trailing partial value: %d bits remaining, bit_width %d", totalBits%bitWidth, bitWidth)
		}
		count = totalBits / bitWidth
	}

	values := make([]int64, 0, count)
	bitPos := startBit
	for i := 0; i < count; i++ {
		residue, next := readBits(data, bitPos, bitWidth, littleEndian)
		bitPos = next
		values = append(values, fromResidue(residue, bitWidth, isSigned))
	}

	return values, bitPos % 8, status.OKStatus()
}

func valueRange(bitWidth int, isSigned bool) (int64, int64) {
	if isSigned {
		half := int64(1) << uint(bitWidth-1)
		return -half, half - 1
	}
	return 0, (int64(1) << uint(bitWidth)) - 1
}

// toResidue encodes v (already range-checked) as its unsigned residue
// modulo 2^bitWidth, i.e. two's-complement bit pattern for negatives.
func toResidue(v int64, bitWidth int) uint64 {
	mask := uint64(1)<<uint(bitWidth) - 1
	return uint64(v) & mask
}

// fromResidue decodes an unsigned bit pattern back to a signed or
// unsigned int64, sign-extending when isSigned is set.
func fromResidue(residue uint64, bitWidth int, isSigned bool) int64 {
	if !isSigned {
		return int64(residue)
	}
	signBit := uint64(1) << uint(bitWidth-1)
	if residue&signBit != 0 {
		mask := uint64(1)<<uint(bitWidth) - 1
		return int64(residue|^mask) // sign-extend into the high bits
	}
	return int64(residue)
}

// appendBits writes the low bitWidth bits of value into buf starting at
// bit offset bitPos within buf's final byte (allocating bytes as
// needed), and returns the grown buffer and the new absolute bit
// offset (caller takes mod 8 when done).
func appendBits(buf []byte, bitPos int, value uint64, bitWidth int, littleEndian bool) ([]byte, int) {
	if bitPos == 0 {
		buf = append(buf, 0)
	}
	remaining := bitWidth
	for remaining > 0 {
		byteIdx := len(buf) - 1
		freeBits := 8 - bitPos
		take := remaining
		if take > freeBits {
			take = freeBits
		}

		var chunk byte
		if littleEndian {
			// LSB-first: take the low `take` bits of value's remaining LSBs.
			chunk = byte(value & ((1 << uint(take)) - 1))
			value >>= uint(take)
			buf[byteIdx] |= chunk << uint(bitPos)
		} else {
			// MSB-first: take the high `take` bits of the remaining value.
			shift := uint(remaining - take)
			chunk = byte((value >> shift) & ((1 << uint(take)) - 1))
			buf[byteIdx] |= chunk << uint(freeBits-take)
		}

		bitPos += take
		remaining -= take
		if bitPos == 8 && remaining > 0 {
			buf = append(buf, 0)
			bitPos = 0
		}
	}
	return buf, bitPos
}

// readBits is the inverse of appendBits: reads bitWidth bits starting
// at absolute bit offset bitPos (counted from data[0]'s MSB/LSB
// depending on littleEndian) and returns the unsigned residue plus the
// new absolute bit offset.
func readBits(data []byte, bitPos int, bitWidth int, littleEndian bool) (uint64, int) {
	var residue uint64
	remaining := bitWidth
	shiftIntoResult := uint(0)
	for remaining > 0 {
		byteIdx := bitPos / 8
		bitInByte := bitPos % 8
		freeBits := 8 - bitInByte
		take := remaining
		if take > freeBits {
			take = freeBits
		}

		b := data[byteIdx]
		if littleEndian {
			chunk := (b >> uint(bitInByte)) & byte((1<<uint(take))-1)
			residue |= uint64(chunk) << shiftIntoResult
			shiftIntoResult += uint(take)
		} else {
			shift := uint(freeBits - take)
			chunk := (b >> shift) & byte((1<<uint(take))-1)
			residue = (residue << uint(take)) | uint64(chunk)
		}

		bitPos += take
		remaining -= take
	}
	return residue, bitPos
}

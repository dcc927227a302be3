package bist

import (
	"encoding/binary"
)

// A Transaction is one word-sized access of a run. Address is a word
// address. Mask enables bytes of the word, bit i for byte i; zero enables all
// of them.
type Transaction struct {
	Index   uint64
	Address uint64
	Data    uint64
	Mask    uint64
}

// EncodeWord lays out the low DataWidth bits of v as little-endian bytes.
func EncodeWord(v uint64, w Widths) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)

	return buf[:w.BytesPerWord()]
}

// DecodeWord reads a little-endian word of up to 8 bytes.
func DecodeWord(data []byte) uint64 {
	buf := make([]byte, 8)
	copy(buf, data)

	return binary.LittleEndian.Uint64(buf)
}

// ByteEnables expands a byte mask into per-byte flags. A zero mask returns
// nil, which writes every byte.
func ByteEnables(mask uint64, w Widths) []bool {
	if mask == 0 {
		return nil
	}

	enables := make([]bool, w.BytesPerWord())
	for i := range enables {
		enables[i] = mask&(1<<i) != 0
	}

	return enables
}

// MaskBits turns a byte mask into a bit mask over the word. A zero mask
// covers the whole word.
func MaskBits(mask uint64, w Widths) uint64 {
	if mask == 0 {
		return w.DataMask()
	}

	var m uint64
	for i := uint64(0); i < w.BytesPerWord(); i++ {
		if mask&(1<<i) != 0 {
			m |= uint64(0xff) << (8 * i)
		}
	}

	return m
}

// Package cser implements the canonical serialization format used for genesis
// records. Values are split across two streams: raw bytes go to a byte
// stream, while booleans and small byte-length fields go to a bit stream,
// so integers occupy exactly as many bytes as they need.
//
// The format is strict: every value has exactly one encoding (minimal byte
// widths, zeroed padding bits, no trailing data). Non-minimal input is
// rejected with ErrNonCanonicalEncoding, which is what makes the resulting
// bytes safe to hash as a commitment.
package cser

import (
	"errors"
	"math/big"

	"github.com/umbra-chain/go-umbra/utils/bits"
	"github.com/umbra-chain/go-umbra/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc limits decoded slice sizes to prevent allocation attacks.
const MaxAlloc = 100 * 1024

// Writer holds the two output streams of an encoding in progress.
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

// Reader holds the two input streams of a decoding in progress.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

// NewWriter creates an empty canonical writer.
func NewWriter() *Writer {
	bbits := &bits.Array{Bytes: make([]byte, 0, 32)}
	bbytes := make([]byte, 0, 200)
	return &Writer{
		BitsW:  bits.NewWriter(bbits),
		BytesW: fast.NewWriter(bbytes),
	}
}

// writeUint64Compact encodes v as a varint with inverted continuation logic:
// the MSB of a chunk set means "stop". Used only for the suffix length field.
func writeUint64Compact(bytesW *fast.Writer, v uint64) {
	for {
		chunk := v & 0x7f
		v >>= 7
		if v == 0 {
			chunk |= 0x80
		}
		bytesW.WriteByte(byte(chunk))
		if v == 0 {
			break
		}
	}
}

// readUint64Compact decodes the inverted-stop varint, rejecting a zero-valued
// trailing chunk (the value would have a shorter encoding).
func readUint64Compact(bytesR *fast.Reader) uint64 {
	v := uint64(0)
	stop := false
	for i := 0; !stop; i++ {
		chunk := uint64(bytesR.ReadByte())
		stop = (chunk & 0x80) != 0
		word := chunk & 0x7f
		v |= word << (i * 7)
		if i > 0 && stop && word == 0 {
			panic(ErrNonCanonicalEncoding)
		}
	}
	return v
}

// writeUint64BitCompact writes v little-endian using the minimal number of
// bytes, but at least minSize. Returns the number of bytes written.
func writeUint64BitCompact(bytesW *fast.Writer, v uint64, minSize int) (size int) {
	for size < minSize || v != 0 {
		bytesW.WriteByte(byte(v))
		size++
		v >>= 8
	}
	return
}

// readUint64BitCompact reads size little-endian bytes, rejecting a zero most
// significant byte (non-minimal width).
func readUint64BitCompact(bytesR *fast.Reader, size int) uint64 {
	var (
		v    uint64
		last byte
	)
	buf := bytesR.Read(size)
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
		last = b
	}
	if size > 1 && last == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

// readU64 reads the byte width from the bit stream, then that many bytes
// from the byte stream.
func (r *Reader) readU64(minSize int, bitsForSize int) uint64 {
	size := r.BitsR.Read(bitsForSize)
	size += uint(minSize)
	return readUint64BitCompact(r.BytesR, int(size))
}

// writeU64 writes the value bytes to the byte stream and the width offset to
// the bit stream.
func (w *Writer) writeU64(minSize int, bitsForSize int, v uint64) {
	size := writeUint64BitCompact(w.BytesW, v, minSize)
	w.BitsW.Write(bitsForSize, uint(size-minSize))
}

// U8 writes a raw byte.
func (w *Writer) U8(v uint8) {
	w.BytesW.WriteByte(v)
}

// U8 reads a raw byte.
func (r *Reader) U8() uint8 {
	return r.BytesR.ReadByte()
}

// U16 writes a uint16 in 1-2 bytes (1 width bit).
func (w *Writer) U16(v uint16) {
	w.writeU64(1, 1, uint64(v))
}

func (r *Reader) U16() uint16 {
	return uint16(r.readU64(1, 1))
}

// U32 writes a uint32 in 1-4 bytes (2 width bits).
func (w *Writer) U32(v uint32) {
	w.writeU64(1, 2, uint64(v))
}

func (r *Reader) U32() uint32 {
	return uint32(r.readU64(1, 2))
}

// U64 writes a uint64 in 1-8 bytes (3 width bits).
func (w *Writer) U64(v uint64) {
	w.writeU64(1, 3, v)
}

func (r *Reader) U64() uint64 {
	return r.readU64(1, 3)
}

// I64 writes a signed value as a sign bit plus magnitude. Negative zero is
// rejected on read.
func (w *Writer) I64(v int64) {
	w.Bool(v < 0)
	if v < 0 {
		w.U64(uint64(-v))
	} else {
		w.U64(uint64(v))
	}
}

func (r *Reader) I64() int64 {
	neg := r.Bool()
	abs := r.U64()
	if neg && abs == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	if neg {
		return -int64(abs)
	}
	return int64(abs)
}

// U56 writes a length field in 0-7 bytes (3 width bits, minSize 0).
func (w *Writer) U56(v uint64) {
	const max = 1<<(8*7) - 1
	if v > max {
		panic("value exceeds 56 bits")
	}
	w.writeU64(0, 3, v)
}

func (r *Reader) U56() uint64 {
	return r.readU64(0, 3)
}

// Bool writes a single bit.
func (w *Writer) Bool(v bool) {
	u := uint(0)
	if v {
		u = 1
	}
	w.BitsW.Write(1, u)
}

func (r *Reader) Bool() bool {
	return r.BitsR.Read(1) != 0
}

// FixedBytes writes raw bytes without a length prefix.
func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}

// FixedBytes fills v with raw bytes from the stream.
func (r *Reader) FixedBytes(v []byte) {
	buf := r.BytesR.Read(len(v))
	copy(v, buf)
}

// SliceBytes writes a U56 length prefix followed by the bytes.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length-prefixed byte slice, rejecting sizes over maxLen.
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}

// PaddedBytes left-pads b with zeroes to at least n bytes.
func PaddedBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	padding := make([]byte, n-len(b))
	return append(padding, b...)
}

// BigInt writes the magnitude of a non-negative big integer as a byte slice.
func (w *Writer) BigInt(v *big.Int) {
	bigBytes := []byte{}
	if v.Sign() != 0 {
		bigBytes = v.Bytes()
	}
	w.SliceBytes(bigBytes)
}

// BigInt reads a non-negative big integer of at most 512 bytes.
func (r *Reader) BigInt() *big.Int {
	buf := r.SliceBytes(512)
	if len(buf) == 0 {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(buf)
}

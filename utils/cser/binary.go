package cser

import (
	"github.com/umbra-chain/go-umbra/utils/bits"
	"github.com/umbra-chain/go-umbra/utils/fast"
)

// Wire layout of a canonical blob:
//
//	[body bytes] [bit-stream bytes] [reversed varint: len(bit-stream bytes)]
//
// The length suffix is written in reverse so a reader can decode it by
// scanning backwards from the end of the blob.

// MarshalBinaryAdapter runs the given marshalling callback against a fresh
// Writer and packs both streams into a single byte slice.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()

	err := marshalCser(w)
	if err != nil {
		return nil, err
	}

	return binaryFromCSER(w.BitsW.Array, w.BytesW.Bytes())
}

func binaryFromCSER(bbits *bits.Array, bbytes []byte) (raw []byte, err error) {
	bodyBytes := fast.NewWriter(bbytes)
	bodyBytes.Write(bbits.Bytes)

	sizeWriter := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(sizeWriter, uint64(len(bbits.Bytes)))
	bodyBytes.Write(reversed(sizeWriter.Bytes()))

	return bodyBytes.Bytes(), nil
}

func binaryToCSER(raw []byte) (bbits *bits.Array, bbytes []byte, err error) {
	// decode the reversed length suffix; 9 bytes covers any 64-bit varint
	bitsSizeBuf := reversed(tail(raw, 9))
	bitsSizeReader := fast.NewReader(bitsSizeBuf)
	bitsSize := readUint64Compact(bitsSizeReader)

	raw = raw[:len(raw)-bitsSizeReader.Position()]
	if uint64(len(raw)) < bitsSize {
		err = ErrMalformedEncoding
		return
	}

	bbits = &bits.Array{Bytes: raw[uint64(len(raw))-bitsSize:]}
	bbytes = raw[:uint64(len(raw))-bitsSize]
	return
}

// UnmarshalBinaryAdapter splits the blob back into its two streams, runs the
// unmarshalling callback, and enforces full consumption: leftover bytes,
// leftover bit-stream bytes, or non-zero padding bits all make the encoding
// non-canonical. Panics from the underlying readers are recovered into
// ErrMalformedEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(reader *Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if recovered, ok := r.(error); ok {
				err = recovered
			} else {
				err = ErrMalformedEncoding
			}
		}
	}()

	bbits, bbytes, err := binaryToCSER(raw)
	if err != nil {
		return err
	}

	bodyReader := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}

	err = unmarshalCser(bodyReader)
	if err != nil {
		return err
	}

	if bodyReader.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	tail := bodyReader.BitsR.Read(bodyReader.BitsR.NonReadBits())
	if tail != 0 {
		return ErrNonCanonicalEncoding
	}
	if !bodyReader.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}

	return nil
}

// tail returns the last cap bytes of b, or all of b if shorter.
func tail(b []byte, cap int) []byte {
	if len(b) > cap {
		return b[len(b)-cap:]
	}
	return b
}

func reversed(b []byte) []byte {
	reversed := make([]byte, len(b))
	for i, v := range b {
		reversed[len(b)-1-i] = v
	}
	return reversed
}

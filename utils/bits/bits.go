// Package bits implements a bit-granular stream reader and writer over a byte
// slice. Values are packed LSB-first within each byte, so a value written with
// Write(n, v) is recovered by Read(n) regardless of byte boundaries.
//
// The stream carries the boolean flags and small length fields of the
// canonical serialization format (see utils/cser).
package bits

type (
	// Array holds the underlying byte slice of a bitstream.
	Array struct {
		Bytes []byte
	}

	// Writer appends bits to an Array.
	Writer struct {
		*Array
		bitOffset int // next bit to write within the last byte, 0-7
	}

	// Reader consumes bits from an Array.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

// NewWriter creates a bitstream writer over the given array.
func NewWriter(arr *Array) *Writer {
	return &Writer{
		Array: arr,
	}
}

// NewReader creates a bitstream reader over the given array.
func NewReader(arr *Array) *Reader {
	return &Reader{
		Array: arr,
	}
}

func (a *Writer) byteBitsFree() int {
	return 8 - a.bitOffset
}

func (a *Writer) writeIntoLastByte(v uint) {
	a.Bytes[len(a.Bytes)-1] |= byte(v << a.bitOffset)
}

// zeroTopBits masks v so that only the bits fitting before the next byte
// boundary survive.
func zeroTopBits(v uint, clear int) uint {
	mask := uint(0xff) >> clear
	return v & mask
}

// Write appends the lowest count bits of v to the stream.
func (a *Writer) Write(count int, v uint) {
	if a.bitOffset == 0 {
		a.Bytes = append(a.Bytes, byte(0))
	}

	free := a.byteBitsFree()
	if count <= free {
		a.writeIntoLastByte(v)
		if count == free {
			a.bitOffset = 0
		} else {
			a.bitOffset += count
		}
		return
	}

	// Spill: fill the current byte, then continue with the remaining bits.
	a.writeIntoLastByte(zeroTopBits(v, a.bitOffset))
	a.bitOffset = 0
	a.Write(count-free, v>>free)
}

func (a *Reader) byteBitsFree() int {
	return 8 - a.bitOffset
}

// Read consumes count bits and returns them as an unsigned value.
func (a *Reader) Read(count int) (v uint) {
	if count == 0 {
		return 0
	}

	free := a.byteBitsFree()
	if count <= free {
		clear := 8 - (a.bitOffset + count)
		v = zeroTopBits(uint(a.Bytes[a.byteOffset]), clear) >> a.bitOffset
		if count == free {
			a.bitOffset = 0
			a.byteOffset++
		} else {
			a.bitOffset += count
		}
		return v
	}

	// Spans a byte boundary: take the rest of this byte, then recurse.
	v = uint(a.Bytes[a.byteOffset]) >> a.bitOffset
	a.bitOffset = 0
	a.byteOffset++
	rest := a.Read(count - free)
	v |= rest << free
	return v
}

// View returns the next count bits without advancing the cursor.
func (a *Reader) View(count int) (v uint) {
	cp := *a
	return (&cp).Read(count)
}

// NonReadBytes returns the number of bytes not yet fully consumed.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits returns the number of bits not yet consumed.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}

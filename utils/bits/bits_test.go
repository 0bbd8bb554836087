package bits

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testWord struct {
	bits int
	v    uint
}

func bytesToFit(bits int) int {
	if bits%8 == 0 {
		return bits / 8
	}
	return bits/8 + 1
}

func genTestWords(r *rand.Rand, maxCount int, maxBits int) []testWord {
	count := r.Intn(maxCount)
	words := make([]testWord, count)
	for i := range words {
		if maxBits == 1 {
			words[i].bits = 1
		} else {
			words[i].bits = 1 + r.Intn(maxBits-1)
		}
		words[i].v = uint(r.Intn(1 << words[i].bits))
	}
	return words
}

// testBitArray writes the words, reads them back, and checks cursor state and
// EOF behavior along the way.
func testBitArray(t *testing.T, words []testWord, name string) {
	arr := Array{make([]byte, 0, 100)}
	writer := NewWriter(&arr)
	reader := NewReader(&arr)

	totalBitsWritten := 0
	for _, w := range words {
		writer.Write(w.bits, w.v)
		totalBitsWritten += w.bits
	}
	assert.EqualValuesf(t, bytesToFit(totalBitsWritten), len(arr.Bytes), "%s: byte length mismatch", name)

	totalBitsRead := 0
	for _, w := range words {
		v := reader.Read(w.bits)
		assert.EqualValuesf(t, w.v, v, "%s: read value mismatch", name)
		totalBitsRead += w.bits

		remaining := bytesToFit(totalBitsWritten)*8 - totalBitsRead
		assert.EqualValuesf(t, remaining, reader.NonReadBits(), "%s: NonReadBits mismatch", name)
		assert.EqualValuesf(t, bytesToFit(reader.NonReadBits()), reader.NonReadBytes(), "%s: NonReadBytes mismatch", name)
	}

	assert.Panicsf(t, func() {
		reader.Read(reader.NonReadBits() + 1)
	}, "%s: should panic when reading past EOF", name)

	// padding bits of the last byte must be zero
	zero := reader.Read(reader.NonReadBits())
	assert.EqualValuesf(t, uint(0), zero, "%s: padding bits must be zero", name)
	assert.EqualValuesf(t, 0, reader.NonReadBits(), "%s: should have 0 bits left", name)
}

func TestBitArrayEmpty(t *testing.T) {
	testBitArray(t, []testWord{}, "empty")
}

func TestBitArraySingleBit(t *testing.T) {
	testBitArray(t, []testWord{{1, 0b0}}, "b0")
	testBitArray(t, []testWord{{1, 0b1}}, "b1")
}

func TestBitArrayCrossByte(t *testing.T) {
	testBitArray(t, []testWord{{9, 0b010101010}}, "9 bits")
	testBitArray(t, []testWord{{17, 0b01010101010101010}}, "17 bits")
}

func TestBitArrayBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		words []testWord
	}{
		{"aligned byte", []testWord{{8, 0xFF}}},
		{"byte then nibble", []testWord{{8, 0xFF}, {4, 0xA}}},
		{"nibble then byte", []testWord{{4, 0xA}, {8, 0xFF}}},
		{"exact 16 bits", []testWord{{16, 0xFFFF}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testBitArray(t, tc.words, tc.name)
		})
	}
}

func TestBitArrayRand(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for _, maxBits := range []int{1, 8, 17} {
		for i := 0; i < 50; i++ {
			testBitArray(t, genTestWords(r, 50, maxBits), fmt.Sprintf("%d bits, case#%d", maxBits, i))
		}
	}
}

func TestBitArrayView(t *testing.T) {
	arr := Array{make([]byte, 0, 10)}
	writer := NewWriter(&arr)
	reader := NewReader(&arr)

	writer.Write(8, 0xAA)
	writer.Write(8, 0x55)

	assert.EqualValues(t, 0xAA, reader.View(8))
	assert.Equal(t, 16, reader.NonReadBits(), "View must not consume bits")
	assert.EqualValues(t, 0xAA, reader.Read(8))
	assert.EqualValues(t, 0x55, reader.View(8))
	assert.EqualValues(t, 0x55, reader.Read(8))
}

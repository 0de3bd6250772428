package scanner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markerJPEG builds a marker-valid JPEG run of exactly size bytes. The
// filler is zeros, so no accidental markers appear inside.
func markerJPEG(size int) []byte {
	if size < 5 {
		panic("markerJPEG: size too small")
	}
	buf := make([]byte, size)
	copy(buf, soiMarker)
	copy(buf[size-2:], eoiMarker)
	return buf
}

func TestFindJPEGSegments_SingleSegment(t *testing.T) {
	jpeg := markerJPEG(100)
	buf := append(bytes.Repeat([]byte{0xab}, 37), jpeg...)
	buf = append(buf, bytes.Repeat([]byte{0xcd}, 11)...)

	segs := New(50).FindJPEGSegments(buf)

	require.Len(t, segs, 1)
	assert.Equal(t, 37, segs[0].Start)
	assert.Equal(t, 37+100, segs[0].End)
	assert.Equal(t, jpeg, buf[segs[0].Start:segs[0].End])
}

func TestFindJPEGSegments_MultipleInBufferOrder(t *testing.T) {
	first := markerJPEG(80)
	second := markerJPEG(200)
	buf := append([]byte{0x00, 0x01}, first...)
	buf = append(buf, 0x42)
	buf = append(buf, second...)

	segs := New(50).FindJPEGSegments(buf)

	require.Len(t, segs, 2)
	assert.Equal(t, 80, segs[0].Len())
	assert.Equal(t, 200, segs[1].Len())
	// Disjoint and ordered.
	assert.Less(t, segs[0].Start, segs[0].End)
	assert.LessOrEqual(t, segs[0].End, segs[1].Start)
}

func TestFindJPEGSegments_DiscardsBelowFloor(t *testing.T) {
	small := markerJPEG(60)
	large := markerJPEG(4096)
	buf := append(small, large...)

	segs := New(1024).FindJPEGSegments(buf)

	require.Len(t, segs, 1)
	assert.Equal(t, 4096, segs[0].Len())
	// The discarded candidate still consumed its range.
	assert.Equal(t, 60, segs[0].Start)
}

func TestFindJPEGSegments_TruncatedStartYieldsNothing(t *testing.T) {
	buf := append([]byte{0xff, 0xd8, 0xff}, bytes.Repeat([]byte{0x00}, 500)...)

	segs := New(5).FindJPEGSegments(buf)

	assert.Empty(t, segs)
}

func TestFindJPEGSegments_NoSignature(t *testing.T) {
	assert.Empty(t, New(5).FindJPEGSegments(bytes.Repeat([]byte{0x11, 0x22}, 512)))
	assert.Empty(t, New(5).FindJPEGSegments(nil))
}

func TestFindJPEGSegments_EndMarkerStrictlyAfterStart(t *testing.T) {
	// FF D8 FF D9 alone: the D9 overlapping the signature must not
	// close the segment.
	buf := []byte{0xff, 0xd8, 0xff, 0xd9}

	segs := New(1).FindJPEGSegments(buf)

	assert.Empty(t, segs)
}

func TestLargest(t *testing.T) {
	_, ok := Largest(nil)
	assert.False(t, ok)

	segs := []Segment{{Start: 0, End: 100}, {Start: 100, End: 900}, {Start: 900, End: 950}}
	best, ok := Largest(segs)
	require.True(t, ok)
	assert.Equal(t, Segment{Start: 100, End: 900}, best)
}

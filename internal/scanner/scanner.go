// Package scanner locates complete embedded JPEG segments inside an
// arbitrary byte buffer. Proprietary RAW containers carry one or more
// full previews at unspecified offsets without a trustworthy directory,
// so marker-byte scanning is the only format-agnostic way to find them.
package scanner

import "bytes"

var (
	soiMarker = []byte{0xff, 0xd8, 0xff}
	eoiMarker = []byte{0xff, 0xd9}
)

// Segment is a half-open byte range [Start, End) bounding one complete
// embedded JPEG.
type Segment struct {
	Start int
	End   int
}

func (s Segment) Len() int {
	return s.End - s.Start
}

type Scanner struct {
	minSegmentBytes int
}

// New returns a scanner that discards candidates shorter than
// minSegmentBytes. The floor filters thumbnail-sized previews that are
// useless as panorama sources.
func New(minSegmentBytes int) *Scanner {
	return &Scanner{minSegmentBytes: minSegmentBytes}
}

// FindJPEGSegments scans buf left to right. A segment starts at the
// signature FF D8 FF and ends at the first FF D9 strictly after it;
// scanning resumes after each end marker, so results are disjoint and
// in buffer order. A start with no end marker yields no candidate. An
// empty result is not an error: the decision belongs to the caller.
func (s *Scanner) FindJPEGSegments(buf []byte) []Segment {
	var segments []Segment

	pos := 0
	for pos < len(buf) {
		rel := bytes.Index(buf[pos:], soiMarker)
		if rel < 0 {
			break
		}
		start := pos + rel

		relEnd := bytes.Index(buf[start+len(soiMarker):], eoiMarker)
		if relEnd < 0 {
			// Truncated segment; keep looking for a later start.
			pos = start + len(soiMarker)
			continue
		}
		end := start + len(soiMarker) + relEnd + len(eoiMarker)

		if end-start >= s.minSegmentBytes {
			segments = append(segments, Segment{Start: start, End: end})
		}
		pos = end
	}

	return segments
}

// Largest returns the segment with the greatest byte length, or false
// when segments is empty. Camera firmware is observed to store the
// highest-resolution preview largest; this is a policy choice made by
// the caller, not a format guarantee.
func Largest(segments []Segment) (Segment, bool) {
	if len(segments) == 0 {
		return Segment{}, false
	}
	best := segments[0]
	for _, seg := range segments[1:] {
		if seg.Len() > best.Len() {
			best = seg
		}
	}
	return best, true
}

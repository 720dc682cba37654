package pipeline

import (
	"time"

	"minutes2text/internal/audio"
)

// SegmentCount returns ceil(totalMs / windowMs).
func SegmentCount(totalMs, windowMs int64) int {
	if totalMs <= 0 || windowMs <= 0 {
		return 0
	}
	return int((totalMs + windowMs - 1) / windowMs)
}

// WindowBounds returns the unclamped [start, stop) span of segment index.
// Segment 0 starts at zero; every later segment starts one full window
// before its nominal window. Every segment runs overlapMs past its nominal
// right edge.
func WindowBounds(index int, windowMs, overlapMs int64) (start, stop int64) {
	i := int64(index)
	start = max(0, i-1) * windowMs
	stop = (i+1)*windowMs + overlapMs
	return start, stop
}

// Windower cuts a Signal into overlapping segments on demand. It walks the
// signal once; a drained Windower stays drained.
type Windower struct {
	signal    *audio.Signal
	windowMs  int64
	overlapMs int64
	count     int
	next      int
}

// NewWindower prepares a Windower. Nothing is sliced until Next is called.
func NewWindower(sig *audio.Signal, window, overlap time.Duration) *Windower {
	w := &Windower{
		signal:    sig,
		windowMs:  window.Milliseconds(),
		overlapMs: overlap.Milliseconds(),
	}
	w.count = SegmentCount(sig.DurationMs(), w.windowMs)
	return w
}

// Len returns the total number of segments the Windower produces.
func (w *Windower) Len() int {
	return w.count
}

// Next returns the next segment, or false once every segment was handed out.
func (w *Windower) Next() (audio.Segment, bool) {
	if w.next >= w.count {
		return audio.Segment{}, false
	}
	start, stop := WindowBounds(w.next, w.windowMs, w.overlapMs)
	seg := w.signal.Slice(start, stop)
	seg.Index = w.next
	w.next++
	return seg, true
}

// Remaining drains the Windower into a slice.
func (w *Windower) Remaining() []audio.Segment {
	segs := make([]audio.Segment, 0, w.count-w.next)
	for {
		seg, ok := w.Next()
		if !ok {
			return segs
		}
		segs = append(segs, seg)
	}
}

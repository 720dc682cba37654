package pipeline

import "context"

// Alternative is one ranked hypothesis for a stretch of audio.
type Alternative struct {
	Transcript string
	Confidence float32
}

// ResultItem is one utterance of a recognition result. Alternatives are
// ordered best first.
type ResultItem struct {
	Alternatives []Alternative
}

// Result is what a resolved transcription job yields.
type Result struct {
	Items []ResultItem
}

// TopTranscripts returns the best hypothesis of every item, in order.
// Items with no alternatives contribute nothing.
func (r *Result) TopTranscripts() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		if len(item.Alternatives) == 0 {
			continue
		}
		out = append(out, item.Alternatives[0].Transcript)
	}
	return out
}

// Operation is a handle on an in-flight transcription job. Wait blocks
// until the job finishes and must be called at most once.
type Operation interface {
	Name() string
	Wait(ctx context.Context) (*Result, error)
}

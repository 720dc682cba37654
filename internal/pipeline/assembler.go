package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// FormatTimestamp renders a segment index as H:MM, treating every index as
// one nominal minute. Hours are unpadded.
func FormatTimestamp(index int) string {
	h, m := index/60, index%60
	return fmt.Sprintf("%d:%02d", h, m)
}

// NewWords builds a segment's text from its top hypotheses. previous holds
// the prior segment's hypotheses; overlap trimming against it is not done
// yet, so it is ignored.
func NewWords(transcripts, previous []string) string {
	return strings.Join(transcripts, " ")
}

// Line is one row of the output transcript.
type Line struct {
	Index int
	Text  string
}

func (l Line) String() string {
	return FormatTimestamp(l.Index) + ", " + l.Text
}

// Assembler resolves transcription jobs in submission order and writes the
// transcript.
type Assembler struct{}

// Write waits on every operation in turn and writes one line per segment.
// Each line goes straight to w, so a failure on segment k leaves lines
// 0..k-1 in place.
func (a *Assembler) Write(ctx context.Context, w io.Writer, ops []Operation) error {
	var previous []string

	for i, op := range ops {
		logrus.WithFields(logrus.Fields{
			"segment":   fmt.Sprintf("%d/%d", i+1, len(ops)),
			"operation": op.Name(),
		}).Debug("waiting for transcription")

		res, err := op.Wait(ctx)
		if err != nil {
			return NewStageError(StageResolve, i, err)
		}

		transcripts := res.TopTranscripts()
		line := Line{Index: i, Text: NewWords(transcripts, previous)}
		if _, err := io.WriteString(w, line.String()+"\n"); err != nil {
			return NewStageError(StageWrite, i, err)
		}
		previous = transcripts

		logrus.WithFields(logrus.Fields{
			"segment":   i,
			"timestamp": FormatTimestamp(i),
			"words":     len(strings.Fields(line.Text)),
		}).Debug("transcript line written")
	}
	return nil
}

package speech

import (
	"context"
	"fmt"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"

	"minutes2text/internal/config"
	"minutes2text/internal/pipeline"
)

// Google is a Recognizer backed by Cloud Speech-to-Text v1.
type Google struct {
	client *gspeech.Client
}

// NewGoogle opens a speech client billed to project.
func NewGoogle(ctx context.Context, project string, opts ...option.ClientOption) (*Google, error) {
	if project != "" {
		opts = append(opts, option.WithQuotaProject(project))
	}
	client, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Google{client: client}, nil
}

// Close releases the underlying client.
func (g *Google) Close() error {
	return g.client.Close()
}

// LongRunningRecognize submits uri and returns without waiting.
func (g *Google) LongRunningRecognize(ctx context.Context, cfg config.RecognitionConfig, uri string) (pipeline.Operation, error) {
	op, err := g.client.LongRunningRecognize(ctx, RecognizeRequest(cfg, uri))
	if err != nil {
		return nil, annotate(fmt.Sprintf("submit %s", uri), err)
	}
	return &googleOperation{op: op}, nil
}

// RecognizeRequest builds the v1 request for uri.
func RecognizeRequest(cfg config.RecognitionConfig, uri string) *speechpb.LongRunningRecognizeRequest {
	return &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          encodingOf(cfg.Encoding),
			SampleRateHertz:   int32(cfg.SampleRateHertz),
			AudioChannelCount: int32(cfg.ChannelCount),
			LanguageCode:      cfg.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri},
		},
	}
}

func encodingOf(e config.Encoding) speechpb.RecognitionConfig_AudioEncoding {
	switch e {
	case config.EncodingFLAC:
		return speechpb.RecognitionConfig_FLAC
	case config.EncodingLinear16:
		return speechpb.RecognitionConfig_LINEAR16
	}
	return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
}

// annotate prefixes err with its gRPC status code when it carries one.
func annotate(msg string, err error) error {
	if s, ok := status.FromError(err); ok {
		return fmt.Errorf("%s (%s): %w", msg, s.Code(), err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

type googleOperation struct {
	op *gspeech.LongRunningRecognizeOperation
}

func (o *googleOperation) Name() string {
	return o.op.Name()
}

// Wait polls until the job is done. There is no local timeout beyond ctx.
func (o *googleOperation) Wait(ctx context.Context) (*pipeline.Result, error) {
	resp, err := o.op.Wait(ctx)
	if err != nil {
		return nil, annotate(fmt.Sprintf("operation %s", o.op.Name()), err)
	}
	return ResultFromResponse(resp), nil
}

// ResultFromResponse copies the hypotheses out of a v1 response.
func ResultFromResponse(resp *speechpb.LongRunningRecognizeResponse) *pipeline.Result {
	res := &pipeline.Result{}
	for _, r := range resp.GetResults() {
		item := pipeline.ResultItem{}
		for _, alt := range r.GetAlternatives() {
			item.Alternatives = append(item.Alternatives, pipeline.Alternative{
				Transcript: alt.GetTranscript(),
				Confidence: alt.GetConfidence(),
			})
		}
		res.Items = append(res.Items, item)
	}
	return res
}

package speech

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"revoice/internal/services"
	"revoice/internal/testsupport"
)

type fakeRecognizer struct {
	requests []*speechpb.RecognizeRequest
	errs     []error
	resp     *speechpb.RecognizeResponse
}

func (f *fakeRecognizer) recognize(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.resp, nil
}

func result(alternatives ...string) *speechpb.SpeechRecognitionResult {
	res := &speechpb.SpeechRecognitionResult{}
	for _, alt := range alternatives {
		res.Alternatives = append(res.Alternatives, &speechpb.SpeechRecognitionAlternative{Transcript: alt})
	}
	return res
}

func writeMono(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mono.wav")
	testsupport.WriteWAV(t, path, 44100, 1, make([]int, 441))
	return path
}

func newTestClient(t *testing.T, fake *fakeRecognizer, attempts int) *Client {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithRetryAttempts(attempts))
	client := newClient(cfg, fake.recognize, nil, nil)
	client.policy.Sleeper = func(_ time.Duration) {}
	return client
}

func TestTranscribeJoinsTopAlternatives(t *testing.T) {
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{
		result("so um I went", "so I want"),
		result(),
		result("to the store"),
	}}}
	client := newTestClient(t, fake, 1)
	path := writeMono(t)

	transcript, err := client.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if transcript != "so um I went to the store" {
		t.Fatalf("unexpected transcript %q", transcript)
	}

	cfg := fake.requests[0].GetConfig()
	if cfg.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 || cfg.GetSampleRateHertz() != 44100 || cfg.GetLanguageCode() != "en-US" {
		t.Fatalf("unexpected recognition config %+v", cfg)
	}
	if len(fake.requests[0].GetAudio().GetContent()) == 0 {
		t.Fatal("expected audio bytes in request")
	}
}

func TestTranscribeEmptyResults(t *testing.T) {
	client := newTestClient(t, &fakeRecognizer{resp: &speechpb.RecognizeResponse{}}, 1)
	transcript, err := client.Transcribe(context.Background(), writeMono(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if transcript != "" {
		t.Fatalf("expected empty transcript, got %q", transcript)
	}
}

func TestTranscribeRetriesUnavailable(t *testing.T) {
	fake := &fakeRecognizer{
		errs: []error{status.Error(codes.Unavailable, "connection reset")},
		resp: &speechpb.RecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{result("hello")}},
	}
	client := newTestClient(t, fake, 3)

	transcript, err := client.Transcribe(context.Background(), writeMono(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if transcript != "hello" || len(fake.requests) != 2 {
		t.Fatalf("expected success on second attempt, got %q after %d requests", transcript, len(fake.requests))
	}
}

func TestTranscribeRejectedMetadataFailsImmediately(t *testing.T) {
	fake := &fakeRecognizer{errs: []error{status.Error(codes.InvalidArgument, "sample_rate_hertz (44100) must match WAV header (48000)")}}
	client := newTestClient(t, fake, 3)

	_, err := client.Transcribe(context.Background(), writeMono(t))
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected a single request, got %d", len(fake.requests))
	}
	if services.Kind(err) != "transcription" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
}

func TestTranscribeDeadlineIsTimeout(t *testing.T) {
	fake := &fakeRecognizer{errs: []error{status.Error(codes.DeadlineExceeded, "slow")}}
	client := newTestClient(t, fake, 1)

	_, err := client.Transcribe(context.Background(), writeMono(t))
	if !errors.Is(err, services.ErrTranscription) || !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected transcription timeout, got %v", err)
	}
}

func TestTranscribeUnreadableFile(t *testing.T) {
	fake := &fakeRecognizer{}
	client := newTestClient(t, fake, 1)

	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatal("expected no request for unreadable file")
	}
}

package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAISynthesizer streams tts-1 audio as raw PCM (s16le, mono, 24 kHz).
type OpenAISynthesizer struct {
	api openai.Client
}

// NewOpenAISynthesizer builds the TTS client. A nil httpClient keeps the
// default transport.
func NewOpenAISynthesizer(apiKey string, httpClient *http.Client) *OpenAISynthesizer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAISynthesizer{api: openai.NewClient(opts...)}
}

func (s *OpenAISynthesizer) Stream(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := s.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoiceOnyx,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	return resp.Body, nil
}

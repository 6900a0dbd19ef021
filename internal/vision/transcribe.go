package vision

import (
	"context"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Transcriber turns a voice message into text for the conversation engine.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperTranscriber transcribes audio through the OpenAI speech API.
type WhisperTranscriber struct {
	client *openai.Client
	logger zerolog.Logger
}

func NewWhisperTranscriber(apiKey string, logger zerolog.Logger) *WhisperTranscriber {
	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		logger: logger.With().Str("component", "transcriber").Logger(),
	}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Language: "ru",
	})
	if err != nil {
		t.logger.Error().Err(err).Str("path", audioPath).Msg("transcription failed")
		return "", err
	}
	return resp.Text, nil
}

// NullTranscriber is used when no speech API key is configured.
type NullTranscriber struct{}

func (NullTranscriber) Transcribe(context.Context, string) (string, error) {
	return "", nil
}

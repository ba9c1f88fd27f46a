package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITranscriber transcribes speech through the OpenAI audio API, or any
// OpenAI-compatible endpoint when baseURL is set.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAITranscriber creates a Whisper-style transcriber. An empty model
// defaults to whisper-1.
func NewOpenAITranscriber(apiKey, model, baseURL string) *OpenAITranscriber {
	cfg := openai.DefaultConfig(apiKey)
	name := "openai"
	if baseURL != "" {
		cfg.BaseURL = baseURL
		name = "openai-compatible"
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   fmt.Sprintf("%s/%s", name, model),
	}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   bytes.NewReader(wav),
		FilePath: "question.wav", // filename hint only; audio comes from Reader
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}

func (t *OpenAITranscriber) Name() string { return t.name }

// NewDashScopeTranscriber transcribes through DashScope's OpenAI-compatible
// audio endpoint.
func NewDashScopeTranscriber(apiKey, model string) *OpenAITranscriber {
	t := NewOpenAITranscriber(apiKey, model, "https://dashscope.aliyuncs.com/compatible-mode/v1")
	t.name = fmt.Sprintf("dashscope/%s", t.model)
	return t
}

// OpenAISynthesizer synthesizes speech through the OpenAI audio API.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

// NewOpenAISynthesizer creates a TTS synthesizer. Empty model and voice
// default to tts-1 and alloy.
func NewOpenAISynthesizer(apiKey, model, voice string) *OpenAISynthesizer {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAISynthesizer{
		client: openai.NewClient(apiKey),
		model:  model,
		voice:  voice,
	}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading synthesized audio: %w", err)
	}
	return audio, nil
}

func (s *OpenAISynthesizer) Name() string {
	return fmt.Sprintf("openai/%s/%s", s.model, s.voice)
}

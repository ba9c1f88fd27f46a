package voice

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const dashScopeRealtimeURL = "wss://dashscope.aliyuncs.com/api-ws/v1/realtime"

// DashScopeSynthesizer streams synthesized speech from DashScope's realtime
// TTS endpoint over a websocket. The exchange is: send a config frame, the
// text, then an end frame; collect base64 "audio" frames until "done".
type DashScopeSynthesizer struct {
	apiKey string
	model  string
	voice  string
	url    string
}

// NewDashScopeSynthesizer creates a realtime TTS synthesizer. Empty model and
// voice default to qwen3-tts-flash-realtime and Cherry.
func NewDashScopeSynthesizer(apiKey, model, voice string) *DashScopeSynthesizer {
	if model == "" {
		model = "qwen3-tts-flash-realtime"
	}
	if voice == "" {
		voice = "Cherry"
	}
	return &DashScopeSynthesizer{
		apiKey: apiKey,
		model:  model,
		voice:  voice,
		url:    fmt.Sprintf("%s?model=%s", dashScopeRealtimeURL, model),
	}
}

type ttsClientFrame struct {
	Type       string `json:"type"`
	Voice      string `json:"voice,omitempty"`
	Format     string `json:"format,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Text       string `json:"text,omitempty"`
}

type ttsServerFrame struct {
	Type    string `json:"type"`
	Audio   string `json:"audio,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *DashScopeSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing tts endpoint: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dialing tts endpoint: %w", err)
	}
	defer conn.Close()

	frames := []ttsClientFrame{
		{Type: "config", Voice: s.voice, Format: "wav", SampleRate: 16000},
		{Type: "text", Text: text},
		{Type: "end"},
	}
	for _, f := range frames {
		if err := conn.WriteJSON(f); err != nil {
			return nil, fmt.Errorf("sending %s frame: %w", f.Type, err)
		}
	}

	deadline := time.Now().Add(60 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var audio []byte
	for {
		var frame ttsServerFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return nil, fmt.Errorf("reading tts frame: %w", err)
		}
		switch frame.Type {
		case "audio":
			chunk, err := base64.StdEncoding.DecodeString(frame.Audio)
			if err != nil {
				return nil, fmt.Errorf("decoding audio frame: %w", err)
			}
			audio = append(audio, chunk...)
		case "done":
			return audio, nil
		case "error":
			return nil, fmt.Errorf("tts server error: %s", frame.Message)
		}
	}
}

func (s *DashScopeSynthesizer) Name() string {
	return fmt.Sprintf("dashscope/%s/%s", s.model, s.voice)
}

package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kexuanli/askdocs/internal/rag"
)

// State is the current phase of a voice interaction.
type State string

const (
	StateIdle         State = "idle"
	StateListening    State = "listening"
	StateTranscribing State = "transcribing"
	StateAnswering    State = "answering"
	StateSynthesizing State = "synthesizing"
	StateSpeaking     State = "speaking"
)

// Asker answers a transcribed question. *rag.Engine implements it.
type Asker interface {
	Ask(ctx context.Context, question, history string) (*rag.Answer, error)
}

// Session drives one voice interaction end to end: transcribe the question,
// answer it against the knowledge base, optionally speak the answer back.
type Session struct {
	stt    Transcriber
	engine Asker
	tts    Synthesizer
	player Player

	autoTTS bool
	state   State
	logger  *zap.Logger

	// OnState, when set, is called on every state transition. The CLI uses
	// it to show what the session is doing.
	OnState func(State)
}

// SessionOptions configures a Session.
type SessionOptions struct {
	AutoTTS bool
}

// NewSession creates a voice session. tts and player may be nil when speech
// output is disabled; logger may be nil.
func NewSession(stt Transcriber, engine Asker, tts Synthesizer, player Player, opts SessionOptions, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		stt:     stt,
		engine:  engine,
		tts:     tts,
		player:  player,
		autoTTS: opts.AutoTTS,
		state:   StateIdle,
		logger:  logger,
	}
}

// State returns the session's current phase.
func (s *Session) State() State { return s.state }

func (s *Session) setState(state State) {
	s.state = state
	if s.OnState != nil {
		s.OnState(state)
	}
}

// Exchange is the result of one voice interaction.
type Exchange struct {
	Question string
	Answer   *rag.Answer
	Spoken   bool
}

// AskAudio transcribes a recorded WAV question and answers it.
func (s *Session) AskAudio(ctx context.Context, wav []byte, history string) (*Exchange, error) {
	if s.stt == nil {
		return nil, errors.New("no speech-to-text backend configured")
	}

	s.setState(StateListening)
	defer s.setState(StateIdle)
	if len(wav) == 0 {
		return nil, errors.New("no audio received")
	}

	s.setState(StateTranscribing)

	question, err := s.stt.Transcribe(ctx, wav)
	if err != nil {
		return nil, fmt.Errorf("transcribing question: %w", err)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("transcription produced no text")
	}
	s.logger.Info("transcribed question", zap.String("question", question), zap.String("stt", s.stt.Name()))

	return s.askText(ctx, question, history)
}

// AskText answers a typed question, keeping the same answer/speak flow as
// audio input.
func (s *Session) AskText(ctx context.Context, question, history string) (*Exchange, error) {
	defer s.setState(StateIdle)
	return s.askText(ctx, question, history)
}

func (s *Session) askText(ctx context.Context, question, history string) (*Exchange, error) {
	s.setState(StateAnswering)
	answer, err := s.engine.Ask(ctx, question, history)
	if err != nil {
		return nil, err
	}

	ex := &Exchange{Question: question, Answer: answer}
	if !s.autoTTS || s.tts == nil {
		return ex, nil
	}

	if err := s.Speak(ctx, answer.Text); err != nil {
		// A playback failure should not lose the answer.
		s.logger.Warn("speech output failed", zap.Error(err))
		return ex, nil
	}
	ex.Spoken = true
	return ex, nil
}

// Speak synthesizes text and plays it back.
func (s *Session) Speak(ctx context.Context, text string) error {
	if s.tts == nil {
		return errors.New("no text-to-speech backend configured")
	}
	if s.player == nil {
		return errors.New("no audio player configured")
	}

	s.setState(StateSynthesizing)
	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesizing answer: %w", err)
	}
	if len(audio) == 0 {
		return errors.New("synthesizer returned no audio")
	}
	if !IsWAV(audio) {
		// Realtime endpoints may stream raw PCM16 despite the wav format
		// request; wrap it so any player accepts it.
		audio = EncodeWAV(audio, 16000)
	}

	s.setState(StateSpeaking)
	return s.player.Play(ctx, audio)
}

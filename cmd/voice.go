package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kexuanli/askdocs/internal/voice"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Ask questions by voice",
	Long: `Runs the voice pipeline: a recorded question is transcribed, answered
against the knowledge base, and the answer is optionally spoken back.

With --audio the question comes from a WAV recording; with a question
argument it is answered once; otherwise questions are typed in a loop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().String("audio", "", "path to a WAV recording of the question")
	voiceCmd.Flags().Bool("no-tts", false, "print the answer instead of speaking it")
	rootCmd.AddCommand(voiceCmd)
}

func runVoice(cmd *cobra.Command, args []string) error {
	audioPath, _ := cmd.Flags().GetString("audio")
	noTTS, _ := cmd.Flags().GetBool("no-tts")

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := s.newEngine()
	if err != nil {
		return err
	}

	var stt voice.Transcriber
	if audioPath != "" {
		stt, err = voice.NewTranscriber(s.cfg.STT)
		if err != nil {
			return err
		}
	}

	autoTTS := s.cfg.Voice.AutoTTS && !noTTS
	var (
		tts    voice.Synthesizer
		player voice.Player
	)
	if autoTTS {
		tts, err = voice.NewSynthesizer(s.cfg.TTS)
		if err != nil {
			return err
		}
		player, err = voice.NewPlayer(s.cfg.Voice.Player)
		if err != nil {
			return err
		}
	}

	session := voice.NewSession(stt, engine, tts, player, voice.SessionOptions{AutoTTS: autoTTS}, s.logger)
	session.OnState = func(state voice.State) {
		if state != voice.StateIdle {
			fmt.Printf("[%s]\n", state)
		}
	}

	if audioPath != "" {
		wav, err := os.ReadFile(audioPath)
		if err != nil {
			return fmt.Errorf("reading audio file: %w", err)
		}
		ex, err := session.AskAudio(cmd.Context(), wav, "")
		if err != nil {
			return err
		}
		printExchange(ex)
		return nil
	}

	if len(args) == 1 {
		ex, err := session.AskText(cmd.Context(), args[0], "")
		if err != nil {
			return err
		}
		printExchange(ex)
		return nil
	}

	fmt.Println("Voice mode. Type a question, or 'exit' to quit.")
	var history strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		ex, err := session.AskText(cmd.Context(), question, history.String())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		printExchange(ex)
		fmt.Fprintf(&history, "User: %s\nAssistant: %s\n", ex.Question, ex.Answer.Text)
	}
	return scanner.Err()
}

func printExchange(ex *voice.Exchange) {
	fmt.Printf("Q: %s\n\n%s\n", ex.Question, ex.Answer.Text)
	if len(ex.Answer.Citations) > 0 {
		fmt.Println("\nCited passages:")
		for _, c := range ex.Answer.Citations {
			fmt.Printf("  - %s (%s)\n", c.Source, c.Locator)
		}
	}
}

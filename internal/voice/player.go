package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Player plays a WAV payload for the user.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// ExecPlayer shells out to a system audio player. No CGO audio stack means no
// cross-compilation headaches; every target platform ships a WAV player.
type ExecPlayer struct {
	binary string
}

// NewPlayer returns a player using the given binary, or an auto-detected one
// when binary is empty.
func NewPlayer(binary string) (*ExecPlayer, error) {
	if binary != "" {
		if _, err := exec.LookPath(binary); err != nil {
			return nil, fmt.Errorf("audio player %q not found: %w", binary, err)
		}
		return &ExecPlayer{binary: binary}, nil
	}

	candidates := []string{"aplay", "paplay", "ffplay"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"afplay"}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return &ExecPlayer{binary: c}, nil
		}
	}
	return nil, fmt.Errorf("no audio player found (tried %v); set voice.player in the config", candidates)
}

func (p *ExecPlayer) Play(ctx context.Context, wav []byte) error {
	f, err := os.CreateTemp("", "askdocs-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(wav); err != nil {
		f.Close()
		return fmt.Errorf("writing temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	args := []string{f.Name()}
	if p.binary == "ffplay" {
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet", f.Name()}
	}

	cmd := exec.CommandContext(ctx, p.binary, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("playing audio with %s: %w", p.binary, err)
	}
	return nil
}

package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Player plays an audio file and returns when playback ends
type Player interface {
	Play(ctx context.Context, path string) error
}

// CommandPlayer plays audio through an external program
type CommandPlayer struct {
	Name string
	Args []string // placed before the file path
}

// DefaultPlayer returns the platform's command-line player: aplay on
// Linux, afplay on macOS and the shell's start on Windows.
func DefaultPlayer() *CommandPlayer {
	switch runtime.GOOS {
	case "darwin":
		return &CommandPlayer{Name: "afplay"}
	case "windows":
		return &CommandPlayer{Name: "cmd", Args: []string{"/c", "start", "/wait", ""}}
	default:
		return &CommandPlayer{Name: "aplay", Args: []string{"-q"}}
	}
}

// Play runs the player command for path
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string(nil), p.Args...), path)
	out, err := exec.CommandContext(ctx, p.Name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("speech: %s failed: %w: %s", p.Name, err, out)
	}
	return nil
}

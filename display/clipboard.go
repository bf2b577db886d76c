package display

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kbukum/voxscribe/process"
)

// ErrNoClipboard is returned when no clipboard tool is installed.
var ErrNoClipboard = errors.New("no clipboard tool found")

// Clipboard receives copied text.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) Copy(ctx context.Context, text string) error { return f(ctx, text) }

// Reported is a clipboard write already performed by the browser; Copy
// returns the result the page reported.
type Reported struct {
	Err error
}

func (r Reported) Copy(context.Context, string) error { return r.Err }

// System copies through the desktop clipboard tool: wl-copy on Wayland,
// xclip on X11, pbcopy on macOS.
type System struct {
	lookPath func(string) (string, error)
	getenv   func(string) string
}

func NewSystem() *System {
	return &System{lookPath: exec.LookPath, getenv: os.Getenv}
}

func (s *System) Copy(ctx context.Context, text string) error {
	name, args, err := s.command()
	if err != nil {
		return err
	}
	_, err = process.Run(ctx, process.Command{Binary: name, Args: args, Stdin: strings.NewReader(text)})
	return err
}

func (s *System) command() (string, []string, error) {
	var candidates [][]string
	switch {
	case runtime.GOOS == "darwin":
		candidates = [][]string{{"pbcopy"}}
	case s.getenv("WAYLAND_DISPLAY") != "":
		candidates = [][]string{{"wl-copy"}, {"xclip", "-selection", "clipboard"}}
	default:
		candidates = [][]string{{"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}}
	}
	for _, c := range candidates {
		if _, err := s.lookPath(c[0]); err == nil {
			return c[0], c[1:], nil
		}
	}
	return "", nil, ErrNoClipboard
}

package notice

import (
	"context"
	"fmt"
	"io"

	"github.com/gen2brain/beeep"
)

const appName = "voxscribe"

// Desktop shows notices as OS notifications and echoes them to a console.
// Used by the command-line client, which has no page to show toasts on.
type Desktop struct {
	console io.Writer
	popups  bool
	notify  func(title, message, icon string) error
}

// NewDesktop writes to console and, when popups is set, raises a desktop
// notification for each notice.
func NewDesktop(console io.Writer, popups bool) *Desktop {
	return &Desktop{console: console, popups: popups, notify: beeep.Notify}
}

func (d *Desktop) Notify(_ context.Context, _ string, n Notice) {
	if d.console != nil {
		fmt.Fprintf(d.console, "[%s] %s\n", n.Kind, n.Message)
	}
	if !d.popups {
		return
	}
	title := appName
	if n.Kind == KindError || n.Kind == KindWarning {
		title += ": " + string(n.Kind)
	}
	// Popups are cosmetic; the console line already carried the message.
	_ = d.notify(title, n.Message, "")
}

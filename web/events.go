package web

import (
	"context"

	"github.com/kbukum/voxscribe/display"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/sse"
	"github.com/kbukum/voxscribe/transcript"
)

// RefreshListener pushes the rendered transcript to every tab of the
// session whenever it is replaced.
func RefreshListener(b sse.Broadcaster, d *display.Display, log *logger.Logger) transcript.Listener {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("web")
	return func(ctx context.Context, sessionID string, t transcript.Transcript) {
		ev, err := sse.NewEvent(sse.EventTranscript, d.Render(sessionID, &t))
		if err != nil {
			log.WithContext(ctx).Error("transcript event not encoded", logger.ErrorFields("encode", err))
			return
		}
		b.Broadcast(sse.SessionPattern(sessionID), ev)
	}
}

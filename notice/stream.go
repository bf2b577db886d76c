package notice

import (
	"context"

	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/sse"
)

// Stream sends notices as "notice" events to every open page of the
// session.
type Stream struct {
	b   sse.Broadcaster
	log *logger.Logger
}

func NewStream(b sse.Broadcaster, log *logger.Logger) *Stream {
	if log == nil {
		log = logger.Nop()
	}
	return &Stream{b: b, log: log.WithComponent("notice")}
}

func (s *Stream) Notify(ctx context.Context, sessionID string, n Notice) {
	ev, err := sse.NewEvent(sse.EventNotice, n)
	if err != nil {
		s.log.WithContext(ctx).Warn("notice dropped", logger.ErrorFields("encode", err))
		return
	}
	s.b.Broadcast(sse.SessionPattern(sessionID), ev)
}

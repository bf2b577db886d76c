package notice

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kbukum/voxscribe/sse"
)

type captureBroadcaster struct {
	pattern string
	events  []sse.Event
}

func (c *captureBroadcaster) Broadcast(pattern string, ev sse.Event) {
	c.pattern = pattern
	c.events = append(c.events, ev)
}

func TestStream_BroadcastsToSession(t *testing.T) {
	b := &captureBroadcaster{}
	NewStream(b, nil).Notify(context.Background(), "abc", Success(Copied))

	if b.pattern != "session:abc:*" {
		t.Errorf("pattern = %q", b.pattern)
	}
	if len(b.events) != 1 || b.events[0].Name != sse.EventNotice {
		t.Fatalf("events = %+v", b.events)
	}
	var got Notice
	if err := json.Unmarshal(b.events[0].Data, &got); err != nil {
		t.Fatal(err)
	}
	if got != Success(Copied) {
		t.Errorf("notice = %+v", got)
	}
}

func TestDesktop(t *testing.T) {
	var console bytes.Buffer
	var titles []string
	d := NewDesktop(&console, true)
	d.notify = func(title, message, _ string) error {
		titles = append(titles, title)
		return nil
	}

	d.Notify(context.Background(), "", Error(CopyFailed))
	d.Notify(context.Background(), "", Success(Downloaded))

	if !strings.Contains(console.String(), "[error] Failed to copy transcript") {
		t.Errorf("console = %q", console.String())
	}
	if len(titles) != 2 || titles[0] != "voxscribe: error" || titles[1] != "voxscribe" {
		t.Errorf("titles = %v", titles)
	}
}

func TestDesktop_NoPopups(t *testing.T) {
	d := NewDesktop(nil, false)
	d.notify = func(string, string, string) error {
		t.Fatal("popup raised with popups disabled")
		return nil
	}
	d.Notify(context.Background(), "", Info("x"))
}

func TestMultiAndRecorder(t *testing.T) {
	r1, r2 := &Recorder{}, &Recorder{}
	n := Multi(r1, r2)
	n.Notify(context.Background(), "s", Warning(FileTooLarge))
	n.Notify(context.Background(), "s", Error(AudioFailed))

	for _, r := range []*Recorder{r1, r2} {
		if r.Count(KindWarning) != 1 || r.Count(KindError) != 1 || len(r.Notices()) != 2 {
			t.Errorf("recorded %+v", r.Notices())
		}
	}
	r1.Reset()
	if len(r1.Notices()) != 0 {
		t.Error("Reset did not clear")
	}
}

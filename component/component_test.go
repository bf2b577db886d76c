package component

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	order    *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.order != nil {
		*m.order = append(*m.order, "start:"+m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.order != nil {
		*m.order = append(*m.order, "stop:"+m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(&mockComponent{name: "redis"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "redis"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestStartStopOrder(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	for _, name := range []string{"redis", "sse", "http"} {
		_ = r.Register(&mockComponent{name: name, order: &order})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := "start:redis,start:sse,start:http,stop:http,stop:sse,stop:redis"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestStartFailureSkipsUnstarted(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "redis", order: &order})
	_ = r.Register(&mockComponent{name: "http", order: &order, startErr: errors.New("bind")})
	_ = r.Register(&mockComponent{name: "late", order: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	order = nil
	_ = r.StopAll(context.Background())
	if strings.Join(order, ",") != "stop:redis" {
		t.Errorf("expected only redis stopped, got %v", order)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "a", stopErr: errors.New("a failed")})
	_ = r.Register(&mockComponent{name: "b", stopErr: errors.New("b failed")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected stop error")
	}
	if !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestHealthAllAndGet(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "redis", health: Health{Name: "redis", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "sse", health: Health{Name: "sse", Status: StatusDegraded}})

	h := r.HealthAll(context.Background())
	if len(h) != 2 || h[1].Status != StatusDegraded {
		t.Errorf("unexpected health %+v", h)
	}
	if r.Get("redis") == nil || r.Get("missing") != nil {
		t.Error("unexpected Get result")
	}
	if len(r.All()) != 2 {
		t.Errorf("expected 2 components, got %d", len(r.All()))
	}
}

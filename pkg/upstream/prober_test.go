package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestProber_EmptyScheduleIsNoop(t *testing.T) {
	p := NewProber(NewClient(testConfig("http://127.0.0.1:1")), "")
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsRunning() {
		t.Error("prober should not run without a schedule")
	}
	if p.NextRun() != nil {
		t.Error("NextRun should be nil without a schedule")
	}
}

func TestProber_InvalidSchedule(t *testing.T) {
	p := NewProber(NewClient(testConfig("http://127.0.0.1:1")), "not a schedule")
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestProber_StartProbesImmediately(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewProber(NewClient(testConfig(server.URL)), "0 3 * * *")
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if !p.IsRunning() {
		t.Error("expected prober running")
	}
	next := p.NextRun()
	if next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun = %v, want a future time", next)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&hits) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&hits) == 0 {
		t.Error("expected an immediate probe on start")
	}
}

func TestProber_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := NewProber(NewClient(testConfig("http://127.0.0.1:1")), "@every 1h")
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for p.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.IsRunning() {
		t.Error("prober should stop when its context is cancelled")
	}
}

func TestProber_RunOnceUpdatesHealth(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"))
	p := NewProber(client, "")

	for i := 0; i < unhealthyThreshold; i++ {
		if err := p.RunOnce(context.Background()); err == nil {
			t.Fatal("expected probe failure against a closed port")
		}
	}
	if client.IsHealthy() {
		t.Error("expected unhealthy after failed probes")
	}
}

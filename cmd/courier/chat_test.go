package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/courier/pkg/client"
)

type scriptedCompleter struct {
	mu      sync.Mutex
	prompts []string
	replies map[string]string
	err     error
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.replies[prompt], nil
}

func TestChatLoop(t *testing.T) {
	day := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	now := func() time.Time { return day }

	tests := []struct {
		name        string
		input       string
		replies     map[string]string
		err         error
		wantPrompts []string
		wantOutput  []string
		wantLen     int
	}{
		{
			name:        "prompts until EOF",
			input:       "halo\n\n   \napa kabar\n",
			replies:     map[string]string{"halo": "hai", "apa kabar": "baik"},
			wantPrompts: []string{"halo", "apa kabar"},
			wantOutput:  []string{"hai\n", "baik\n"},
			wantLen:     4,
		},
		{
			name:        "exit stops reading",
			input:       "halo\n/exit\nignored\n",
			replies:     map[string]string{"halo": "hai"},
			wantPrompts: []string{"halo"},
			wantLen:     2,
		},
		{
			name:        "quit alias",
			input:       "/quit\nignored\n",
			wantPrompts: nil,
		},
		{
			name:        "report command",
			input:       "/laporan\n",
			replies:     map[string]string{"ringkasan laporan 2026-10-17": "laporan siap"},
			wantPrompts: []string{"ringkasan laporan 2026-10-17"},
			wantOutput:  []string{"laporan siap\n"},
			wantLen:     2,
		},
		{
			name:        "empty reply",
			input:       "halo\n",
			wantPrompts: []string{"halo"},
			wantOutput:  []string{client.NoResponse + "\n"},
			wantLen:     2,
		},
		{
			name:        "contact error",
			input:       "halo\n",
			err:         errors.New("connection refused"),
			wantPrompts: []string{"halo"},
			wantOutput:  []string{client.ContactError + "\n"},
			wantLen:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &scriptedCompleter{replies: tt.replies, err: tt.err}
			session := client.NewSession(completer, quietLogger)

			var out bytes.Buffer
			err := chatLoop(context.Background(), strings.NewReader(tt.input), &out, session, io.Discard, now)
			if err != nil {
				t.Fatalf("chatLoop: %v", err)
			}

			if strings.Join(completer.prompts, "|") != strings.Join(tt.wantPrompts, "|") {
				t.Errorf("prompts = %q, want %q", completer.prompts, tt.wantPrompts)
			}
			for _, s := range tt.wantOutput {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output missing %q:\n%s", s, out.String())
				}
			}
			if got := session.Transcript().Len(); got != tt.wantLen {
				t.Errorf("transcript length = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestChatLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()

	session := client.NewSession(&scriptedCompleter{}, quietLogger)
	done := make(chan error, 1)
	go func() {
		done <- chatLoop(ctx, pr, io.Discard, session, io.Discard, time.Now)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("chatLoop returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("chatLoop did not return after cancel")
	}
}

func TestSpinnerWriter(t *testing.T) {
	var buf bytes.Buffer
	if spinnerWriter(&buf) != io.Discard {
		t.Error("non-file writer should disable the spinner")
	}
}

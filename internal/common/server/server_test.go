package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig("0")
	cfg.Addr = "127.0.0.1:0"
	srv := New(cfg, http.NotFoundHandler())
	log := logger.NewWithWriter(io.Discard, "test", "error")

	ctx, cancel := context.WithCancel(context.Background())
	hookCalled := make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, srv, log, "test", func(context.Context) error {
			hookCalled <- struct{}{}
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-hookCalled:
	default:
		t.Fatal("expected shutdown hook to run")
	}
}

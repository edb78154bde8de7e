package main

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPurgeSessions_NonPositiveIntervalDisables(t *testing.T) {
	var calls atomic.Int32
	purge := func(ctx context.Context) (int64, error) {
		calls.Add(1)
		return 0, nil
	}

	done := make(chan struct{})
	go func() {
		purgeSessions(context.Background(), purge, 0, log.New(io.Discard, "", 0))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not return for a zero interval")
	}
	assert.Zero(t, calls.Load())
}

func TestPurgeSessions_RunsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	purge := func(ctx context.Context) (int64, error) {
		calls.Add(1)
		return 1, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		purgeSessions(ctx, purge, 10*time.Millisecond, log.New(io.Discard, "", 0))
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop on cancel")
	}
}

package botapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoller_StopsOnTerminalStatus(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := ProgressSnapshot{JobID: "job-1", Status: JobRunning, CompletedMakers: int(polls.Load())}
		if polls.Add(1) >= 3 {
			snap.Status = JobCompleted
		}
		json.NewEncoder(w).Encode(snap)
	}))
	defer srv.Close()

	poller := NewPoller(PollerOptions{
		Client:   NewClient(srv.URL),
		Interval: 2 * time.Millisecond,
		Logger:   log.New(io.Discard, "", 0),
	})

	var snaps []*ProgressSnapshot
	for snap := range poller.Run(context.Background(), "job-1") {
		snaps = append(snaps, snap)
	}

	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	last := snaps[len(snaps)-1]
	if last.Status != JobCompleted {
		t.Errorf("expected terminal snapshot delivered before close, got %s", last.Status)
	}

	// The channel closed on the terminal status; no further polls follow.
	time.Sleep(10 * time.Millisecond)
	if polls.Load() != 3 {
		t.Errorf("expected polling to stop at 3, got %d", polls.Load())
	}
}

func TestPoller_SkipsFailedPolls(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch polls.Add(1) {
		case 1:
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
		default:
			json.NewEncoder(w).Encode(ProgressSnapshot{JobID: "job-1", Status: JobCompleted})
		}
	}))
	defer srv.Close()

	poller := NewPoller(PollerOptions{
		Client:   NewClient(srv.URL),
		Interval: 2 * time.Millisecond,
		Logger:   log.New(io.Discard, "", 0),
	})

	var snaps []*ProgressSnapshot
	for snap := range poller.Run(context.Background(), "job-1") {
		snaps = append(snaps, snap)
	}

	// The failed poll produced no snapshot.
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].Status != JobCompleted {
		t.Errorf("expected terminal snapshot, got %s", snaps[0].Status)
	}
}

func TestPoller_ContextCancelStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ProgressSnapshot{JobID: "job-1", Status: JobRunning})
	}))
	defer srv.Close()

	poller := NewPoller(PollerOptions{
		Client:   NewClient(srv.URL),
		Interval: 2 * time.Millisecond,
		Logger:   log.New(io.Discard, "", 0),
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch := poller.Run(ctx, "job-1")

	// Drain one snapshot, then cancel.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no snapshot before cancel")
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

package botapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func feedServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProgressFeed_StreamsUntilTerminal(t *testing.T) {
	srv := feedServer(t, func(conn *websocket.Conn) {
		var sub subscribeMsg
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if sub.Action != "subscribe" || sub.JobID != "job-1" {
			t.Errorf("unexpected subscribe frame: %+v", sub)
		}

		// A frame for another job must be filtered out by the client.
		conn.WriteJSON(ProgressSnapshot{JobID: "job-other", Status: JobRunning})
		conn.WriteJSON(ProgressSnapshot{JobID: "job-1", Status: JobRunning, CompletedMakers: 2})
		conn.WriteJSON(ProgressSnapshot{JobID: "job-1", Status: JobCompleted, CompletedMakers: 5})
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := NewProgressFeed(ctx, wsURL(srv), nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewProgressFeed failed: %v", err)
	}
	defer feed.Close()

	ch, err := feed.Subscribe(ctx, "job-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	var snaps []*ProgressSnapshot
	for snap := range ch {
		snaps = append(snaps, snap)
	}

	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots for job-1, got %d", len(snaps))
	}
	if snaps[0].CompletedMakers != 2 || snaps[1].Status != JobCompleted {
		t.Errorf("unexpected snapshots: %+v, %+v", snaps[0], snaps[1])
	}
}

func TestProgressFeed_CloseIdempotent(t *testing.T) {
	srv := feedServer(t, func(conn *websocket.Conn) {
		var sub subscribeMsg
		conn.ReadJSON(&sub)
		// Hold the connection open until the client closes it.
		conn.ReadMessage()
	})
	defer srv.Close()

	ctx := context.Background()
	feed, err := NewProgressFeed(ctx, wsURL(srv), nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewProgressFeed failed: %v", err)
	}

	if _, err := feed.Subscribe(ctx, "job-1"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := feed.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := feed.Close(); err != nil {
		t.Errorf("second Close must be a no-op, got %v", err)
	}

	if _, err := feed.Subscribe(ctx, "job-2"); err == nil {
		t.Error("expected Subscribe to fail on a closed feed")
	}
}

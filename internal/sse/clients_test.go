package sse

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	SetLogger(zerolog.Nop())
}

func TestBroadcastByTopic(t *testing.T) {
	clients := NewSSEClients()
	home := &Client{Msg: make(chan string, 1), Topic: "home"}
	page := &Client{Msg: make(chan string, 1), Topic: "page/about"}
	clients.Add(home)
	clients.Add(page)

	clients.Broadcast("home", "reload")

	select {
	case msg := <-home.Msg:
		if msg != "reload" {
			t.Errorf("Expected reload, got %q", msg)
		}
	default:
		t.Error("Expected home client to receive the message")
	}

	select {
	case msg := <-page.Msg:
		t.Errorf("Expected no message for other topic, got %q", msg)
	default:
	}
}

func TestBroadcastDoesNotBlock(t *testing.T) {
	clients := NewSSEClients()
	slow := &Client{Msg: make(chan string), Topic: "home"}
	clients.Add(slow)

	done := make(chan struct{})
	go func() {
		clients.Broadcast("home", "reload")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a client that is not receiving")
	}
}

func TestDelete(t *testing.T) {
	clients := NewSSEClients()
	c := &Client{Msg: make(chan string, 1), Topic: "home"}
	clients.Add(c)
	if clients.Count() != 1 {
		t.Fatalf("Expected 1 client, got %d", clients.Count())
	}

	clients.Delete(c)
	clients.Delete(c)

	if clients.Count() != 0 {
		t.Errorf("Expected 0 clients, got %d", clients.Count())
	}
	if _, ok := <-c.Msg; ok {
		t.Error("Expected message channel to be closed")
	}
}

func TestHandlerRequiresTopic(t *testing.T) {
	rr := httptest.NewRecorder()
	NewSSEClients().Handler(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestHandlerStreams(t *testing.T) {
	clients := NewSSEClients()
	srv := httptest.NewServer(http.HandlerFunc(clients.Handler))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?topic=updates", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected event stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "event: connected") {
		t.Fatalf("Expected connected event, got %q (%v)", line, err)
	}

	// The client registers after the connected event is flushed.
	deadline := time.Now().Add(2 * time.Second)
	for clients.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	clients.Broadcast("updates", "reload")

	for {
		line, err = reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Stream ended before reload: %v", err)
		}
		if strings.HasPrefix(line, "data: reload") {
			break
		}
	}

	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for clients.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if clients.Count() != 0 {
		t.Error("Expected client to be removed after disconnect")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}

func TestHandlerLogsClientCount(t *testing.T) {
	logs := &lockedBuffer{}
	SetLogger(zerolog.New(logs).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	clients := NewSSEClients()
	srv := httptest.NewServer(http.HandlerFunc(clients.Handler))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?topic=home", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for !logs.Contains(want) && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if !logs.Contains(want) {
			t.Fatalf("Expected %s in logs", want)
		}
	}

	waitFor(`"clients":1,"message":"SSE client connected"`)
	cancel()
	waitFor(`"clients":0,"message":"SSE client disconnected"`)
}

func TestCloseAll(t *testing.T) {
	clients := NewSSEClients()
	a := &Client{Msg: make(chan string, 1), Topic: "home"}
	b := &Client{Msg: make(chan string, 1), Topic: "updates"}
	clients.Add(a)
	clients.Add(b)

	clients.CloseAll()

	if clients.Count() != 0 {
		t.Errorf("Expected no clients, got %d", clients.Count())
	}
	for _, c := range []*Client{a, b} {
		if _, ok := <-c.Msg; ok {
			t.Error("Expected channel closed")
		}
	}

	// A handler deleting its client afterwards must not panic.
	clients.Delete(a)
}

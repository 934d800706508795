package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	return ""
}

// serve runs the handler until the returned stop func is called and then
// returns everything it wrote.
func serve(t *testing.T, b *Broker, lastEventID string) func() string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()
	return func() string {
		cancel()
		<-done
		if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("content type = %q", ct)
		}
		return w.Body.String()
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	a, c := b.SubscribeFrom(0), b.SubscribeFrom(0)
	if n := b.ClientCount(); n != 2 {
		t.Fatalf("clients = %d, want 2", n)
	}
	b.Unsubscribe(a)
	b.Unsubscribe(c)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients = %d after unsubscribe", n)
	}
}

func TestPublish_FrameFormat(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.SubscribeFrom(0)
	defer b.Unsubscribe(ch)

	b.PublishMovieEvent("added", 3, "Alien")

	want := "id: 1\nevent: movie.added\ndata: {\"index\":3,\"title\":\"Alien\"}\n\n"
	if got := recv(t, ch); got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
	if got := recv(t, ch); got != "id: 2\nevent: catalog.changed\ndata: {}\n\n" {
		t.Errorf("frame = %q", got)
	}
}

func TestPublishMovieEvent_ThrottlesCatalogChanged(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.SubscribeFrom(0)
	defer b.Unsubscribe(ch)

	b.PublishMovieEvent("added", 3, "Alien")
	b.PublishMovieEvent("deleted", 0, "Kum")

	var got []string
	for range 3 {
		got = append(got, recv(t, ch))
	}
	select {
	case msg := <-ch:
		t.Fatalf("second catalog.changed not throttled: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}

	for i, typ := range []string{TypeMovieAdded, TypeCatalogChanged, TypeMovieDeleted} {
		if !strings.Contains(got[i], "event: "+typ+"\n") {
			t.Errorf("message %d = %q, want %s", i, got[i], typ)
		}
	}
	if !strings.Contains(got[2], `"title":"Kum"`) {
		t.Errorf("deleted payload = %q", got[2])
	}
}

func TestPublishMovieEvent_ExternalChangeNotThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.SubscribeFrom(0)
	defer b.Unsubscribe(ch)

	b.PublishMovieEvent("changed", -1, "")
	b.PublishMovieEvent("changed", -1, "")

	for range 2 {
		if msg := recv(t, ch); !strings.Contains(msg, "event: catalog.changed") {
			t.Errorf("unexpected message %q", msg)
		}
	}
}

func TestSubscribeFrom_ReplaysMissedEvents(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	live := b.SubscribeFrom(0)
	defer b.Unsubscribe(live)

	// The throttle keeps this to added, changed, deleted.
	b.PublishMovieEvent("added", 3, "Alien")
	b.PublishMovieEvent("deleted", 0, "Kum")
	for range 3 {
		recv(t, live)
	}

	late := b.SubscribeFrom(1)
	defer b.Unsubscribe(late)
	if msg := recv(t, late); !strings.HasPrefix(msg, "id: 2\nevent: catalog.changed") {
		t.Errorf("first replayed = %q", msg)
	}
	if msg := recv(t, late); !strings.HasPrefix(msg, "id: 3\n") || !strings.Contains(msg, "Kum") {
		t.Errorf("second replayed = %q", msg)
	}
	select {
	case msg := <-late:
		t.Errorf("unexpected extra replay %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeFrom_HistoryIsBounded(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	live := b.SubscribeFrom(0)
	defer b.Unsubscribe(live)

	total := historySize + 10
	for range total {
		b.PublishMovieEvent("changed", -1, "")
		recv(t, live)
	}

	late := b.SubscribeFrom(1)
	defer b.Unsubscribe(late)
	first := recv(t, late)
	if !strings.HasPrefix(first, "id: 11\n") {
		t.Errorf("oldest retained = %q, want id 11", first)
	}
}

func TestServeHTTP_StreamsAndCleansUp(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	stop := serve(t, b, "")
	time.Sleep(50 * time.Millisecond)
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}

	b.PublishMovieEvent("deleted", 0, "Kum")
	time.Sleep(50 * time.Millisecond)

	body := stop()
	if !strings.HasPrefix(body, "retry: 3000\n\n") {
		t.Errorf("missing retry hint: %q", body)
	}
	if !strings.Contains(body, "event: movie.deleted") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients = %d after disconnect", n)
	}
}

func TestServeHTTP_LastEventID(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	live := b.SubscribeFrom(0)
	defer b.Unsubscribe(live)

	b.PublishMovieEvent("added", 3, "Kum")
	b.PublishMovieEvent("added", 4, "Alien")
	for range 3 {
		recv(t, live)
	}

	stop := serve(t, b, "2")
	time.Sleep(50 * time.Millisecond)
	body := stop()

	if strings.Contains(body, "Kum") {
		t.Errorf("replayed an event the client already had: %q", body)
	}
	if !strings.Contains(body, "id: 3\n") || !strings.Contains(body, "Alien") {
		t.Errorf("missed event not replayed: %q", body)
	}
}

func TestServeHTTP_KeepAlive(t *testing.T) {
	b := NewBroker(time.Second, WithKeepAlive(20*time.Millisecond))
	defer b.Close()

	stop := serve(t, b, "")
	time.Sleep(80 * time.Millisecond)
	if body := stop(); !strings.Contains(body, ": keep-alive\n\n") {
		t.Errorf("no keep-alive comment in %q", body)
	}
}

func TestPublish_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.SubscribeFrom(0)
	defer b.Unsubscribe(ch)

	for range clientBuffer + 10 {
		b.PublishMovieEvent("changed", -1, "")
	}
	// The loop must still answer after dropping frames for the full client.
	if n := b.ClientCount(); n != 1 {
		t.Errorf("clients = %d", n)
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.SubscribeFrom(0)

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("subscriber channel still open")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients = %d after close", n)
	}

	b.PublishMovieEvent("added", 0, "Kum")
	if _, ok := <-b.SubscribeFrom(0); ok {
		t.Error("subscribe after close returned an open channel")
	}
	b.Close()
}

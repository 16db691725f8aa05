package main

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/dreamware/worldmesh/internal/api"
)

func newTestBot(coord string) *bot {
	return &bot{
		coord:     coord,
		extent:    1000,
		maxRadius: 50,
		types:     []string{"explosion", "spawn"},
		rng:       rand.New(rand.NewSource(1)),
		log:       zap.NewNop().Sugar(),
	}
}

// TestRandomPosition tests that positions stay inside the widened cube
func TestRandomPosition(t *testing.T) {
	b := newTestBot("")
	span := b.extent * 1.1
	for i := 0; i < 1000; i++ {
		p := b.randomPosition()
		if math.Abs(p.X) > span || math.Abs(p.Y) > span || math.Abs(p.Z) > span {
			t.Fatalf("Position %+v outside span %f", p, span)
		}
	}
}

// TestSubmitOne tests event submission accounting
func TestSubmitOne(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req api.EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Type != "explosion" && req.Type != "spawn" {
			t.Errorf("Unexpected event type %s", req.Type)
		}
		if req.Radius < 0 || req.Radius > 50 {
			t.Errorf("Radius %f outside configured bound", req.Radius)
		}
		// Flag every other event as overflowing
		json.NewEncoder(w).Encode(api.EventResponse{EventID: "ev", Overflow: calls%2 == 0})
	}))
	defer server.Close()

	b := newTestBot(server.URL)
	for i := 0; i < 4; i++ {
		b.submitOne(context.Background())
	}

	if b.sent != 4 {
		t.Errorf("Expected 4 sent, got %d", b.sent)
	}
	if b.overflows != 2 {
		t.Errorf("Expected 2 overflows, got %d", b.overflows)
	}
	if b.failures != 0 {
		t.Errorf("Expected 0 failures, got %d", b.failures)
	}
}

// TestSubmitOneFailure tests that rejected events are counted as failures
func TestSubmitOneFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	b := newTestBot(server.URL)
	b.submitOne(context.Background())

	if b.sent != 0 || b.failures != 1 {
		t.Errorf("Expected 0 sent and 1 failure, got %d/%d", b.sent, b.failures)
	}
}

// TestWaitForCoordinator tests the startup probe
func TestWaitForCoordinator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.TopologyResponse{CoordinatorID: "c"})
	}))
	defer server.Close()

	fatals := 0
	logFatal = func(msg string, kv ...any) { fatals++ }

	waitForCoordinator(context.Background(), server.URL, zap.NewNop().Sugar())
	if fatals != 0 {
		t.Errorf("Expected no fatal, got %d", fatals)
	}

	// A canceled context returns without declaring the coordinator dead
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waitForCoordinator(ctx, server.URL, zap.NewNop().Sugar())
	if fatals != 0 {
		t.Errorf("Expected no fatal for canceled context, got %d", fatals)
	}
}

// TestGetenv tests the getenv utility function
func TestGetenv(t *testing.T) {
	os.Setenv("WORLDBOT_TEST_VAR", "set")
	defer os.Unsetenv("WORLDBOT_TEST_VAR")

	if got := getenv("WORLDBOT_TEST_VAR", "default"); got != "set" {
		t.Errorf("Expected set, got %s", got)
	}
	if got := getenv("WORLDBOT_UNSET_VAR", "default"); got != "default" {
		t.Errorf("Expected default, got %s", got)
	}
}

// TestMustParseFloat tests numeric env parsing
func TestMustParseFloat(t *testing.T) {
	fatals := 0
	logFatal = func(msg string, kv ...any) { fatals++ }

	if got := mustParseFloat("K", "2.5"); got != 2.5 {
		t.Errorf("Expected 2.5, got %f", got)
	}
	if fatals != 0 {
		t.Errorf("Expected no fatal, got %d", fatals)
	}

	mustParseFloat("K", "not-a-number")
	if fatals != 1 {
		t.Errorf("Expected 1 fatal, got %d", fatals)
	}
}

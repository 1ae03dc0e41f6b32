package tshock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cartographer/internal/app/ports"
)

type fakeTShock struct {
	token     string
	players   map[string]string
	listOrder []string
}

func (f fakeTShock) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("token") != f.token {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "401", "error": "Not authorized. The specified API endpoint requires a token."})
		return
	}
	switch r.URL.Path {
	case "/v2/players/list":
		players := []map[string]any{}
		for _, name := range f.listOrder {
			players = append(players, map[string]any{"nickname": name, "active": true})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "200", "players": players})
	case "/v3/players/read":
		name := r.URL.Query().Get("player")
		pos, ok := f.players[name]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "400", "error": "Invalid player"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "200", "nickname": name, "position": pos})
	default:
		http.NotFound(w, r)
	}
}

func newTestSource(t *testing.T, handler http.Handler, token string) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := New(srv.URL, token, time.Second)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	return s
}

func TestPositions_ReadsEveryListedPlayer(t *testing.T) {
	s := newTestSource(t, fakeTShock{
		token:     "secret",
		players:   map[string]string{"Ana": "4200,310", "Bo": "17, 900"},
		listOrder: []string{"Ana", "Bo"},
	}, "secret")

	got, err := s.Positions(context.Background())
	if err != nil {
		t.Fatalf("Positions error: %v", err)
	}
	want := []ports.PlayerPosition{{Name: "Ana", X: 4200, Y: 310}, {Name: "Bo", X: 17, Y: 900}}
	if len(got) != len(want) {
		t.Fatalf("got %d players, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("player %d mismatch: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestPositions_SkipsPlayerThatLeft(t *testing.T) {
	s := newTestSource(t, fakeTShock{
		token:     "secret",
		players:   map[string]string{"Ana": "1,2"},
		listOrder: []string{"Ghost", "Ana"},
	}, "secret")

	got, err := s.Positions(context.Background())
	if err != nil {
		t.Fatalf("Positions error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ana" {
		t.Fatalf("expected only Ana, got %+v", got)
	}
}

func TestPositions_BadTokenIsUnauthorized(t *testing.T) {
	s := newTestSource(t, fakeTShock{token: "secret"}, "wrong")

	_, err := s.Positions(context.Background())
	if !errors.Is(err, ports.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPositions_HTTPErrorStatus(t *testing.T) {
	s := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), "secret")

	if _, err := s.Positions(context.Background()); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestParsePosition(t *testing.T) {
	if x, y, err := parsePosition("12,-3"); err != nil || x != 12 || y != -3 {
		t.Fatalf("parsePosition: x=%d y=%d err=%v", x, y, err)
	}
	for _, raw := range []string{"", "12", "a,b", "1,"} {
		if _, _, err := parsePosition(raw); !errors.Is(err, ErrBadPosition) {
			t.Fatalf("parsePosition(%q) expected ErrBadPosition, got %v", raw, err)
		}
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
	"kitchen-display/internal/microservices/board/service"
)

type fakeBoard struct {
	mu       sync.Mutex
	board    *domain.Board
	commands []domain.Command
	err      error
	feed     chan *domain.Board
}

func (f *fakeBoard) Latest() *domain.Board { return f.board }

func (f *fakeBoard) Subscribe() (<-chan *domain.Board, func()) { return f.feed, func() {} }

func (f *fakeBoard) Command(_ context.Context, cmd domain.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return f.err
}

func newRouter(b Board, checks map[string]HealthCheck) http.Handler {
	l, _ := test.NewNullLogger()
	return Router(New(b, checks, logger.NewWithLogger("handlers-test", l)))
}

func sampleBoard() *domain.Board {
	card := domain.OrderCard{ID: "12", Table: "5", Status: domain.StatusCooking, StatusText: "COOKING", TimeDisplay: "6:58", QueueNumber: 1, Selected: true, InGrid: true}
	return &domain.Board{Display: "pass", Slots: []*domain.OrderCard{&card, nil}, Queue: []domain.OrderCard{card}, WindowSize: 2, Total: 1}
}

func TestGetBoard(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeBoard{board: sampleBoard()}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/board", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Total int                 `json:"total"`
		Slots []*domain.OrderCard `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 1 || len(got.Slots) != 2 || got.Slots[1] != nil || got.Slots[0].TimeDisplay != "6:58" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestPostCommand(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantType string
	}{
		{"alias accepted", "/api/v1/commands/done", nil, http.StatusAccepted, ""},
		{"unknown", "/api/v1/commands/explode", nil, http.StatusNotFound, "unknown_command"},
		{"board stopped", "/api/v1/commands/next", service.ErrClosed, http.StatusServiceUnavailable, "board_stopped"},
		{"other failure", "/api/v1/commands/next", errors.New("boom"), http.StatusInternalServerError, "command_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBoard{board: sampleBoard(), err: tc.err}
			rec := httptest.NewRecorder()
			newRouter(b, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if tc.wantType == "" {
				if len(b.commands) != 1 || b.commands[0] != domain.CommandActivate {
					t.Fatalf("unexpected commands %v", b.commands)
				}
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Fatalf("unexpected content type %s", ct)
			}
			var problem map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatal(err)
			}
			if problem["type"] != tc.wantType || problem["status"] != float64(tc.wantCode) {
				t.Fatalf("unexpected problem %v", problem)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	checks := map[string]HealthCheck{
		"board":    func(context.Context) error { return nil },
		"rabbitmq": func(context.Context) error { return errors.New("connection is closed") },
	}
	rec := httptest.NewRecorder()
	newRouter(&fakeBoard{}, checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	newRouter(&fakeBoard{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStreamWritesEvents(t *testing.T) {
	feed := make(chan *domain.Board, 2)
	feed <- sampleBoard()
	b := &fakeBoard{feed: feed}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/board/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		newRouter(b, nil).ServeHTTP(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %s", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: {") || !strings.HasSuffix(body, "}\n\n") || !strings.Contains(body, `"display":"pass"`) {
		t.Fatalf("unexpected stream %q", body)
	}
}

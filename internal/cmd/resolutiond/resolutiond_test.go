package resolutiond

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("resolutiond", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("expected default port 8090, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != ":8091" {
		t.Fatalf("expected default http addr :8091, got %q", cfg.HTTPAddr)
	}
	if cfg.StorePath != "data/resolution.db" {
		t.Fatalf("expected default store path, got %q", cfg.StorePath)
	}
	if cfg.LedgerDir != "data/ledger" {
		t.Fatalf("expected default ledger dir, got %q", cfg.LedgerDir)
	}
	if cfg.GrammarPath != "config/grammar.yaml" {
		t.Fatalf("expected default grammar path, got %q", cfg.GrammarPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("resolutiond", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-port", "9001",
		"-http-addr", "127.0.0.1:9002",
		"-db", "/tmp/scores.db",
		"-ledger-dir", "/tmp/ledgers",
		"-grammar", "/tmp/grammar.yaml",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("expected http addr override, got %q", cfg.HTTPAddr)
	}
	if cfg.StorePath != "/tmp/scores.db" {
		t.Fatalf("expected store path override, got %q", cfg.StorePath)
	}
	if cfg.LedgerDir != "/tmp/ledgers" {
		t.Fatalf("expected ledger dir override, got %q", cfg.LedgerDir)
	}
	if cfg.GrammarPath != "/tmp/grammar.yaml" {
		t.Fatalf("expected grammar path override, got %q", cfg.GrammarPath)
	}
}

type fakeResolver struct {
	result resolution.Result
	err    error

	lastWorldID string
	lastChannel string
}

func (f *fakeResolver) Resolve(_ context.Context, worldID, speakerName, listenerName, channel string) (resolution.Result, error) {
	f.lastWorldID = worldID
	f.lastChannel = channel
	if f.err != nil {
		return resolution.Result{}, f.err
	}
	return f.result, nil
}

func newTestMux(engine resolver) *http.ServeMux {
	mux := http.NewServeMux()
	registerRoutes(mux, engine)
	return mux
}

func postResolve(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/v1/resolve", bytes.NewBufferString(body))
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)
	return recorder
}

func TestHandleResolveSuccess(t *testing.T) {
	engine := &fakeResolver{result: resolution.Result{
		Fingerprint:    "abc123",
		WorldID:        "w-1",
		Channel:        "say",
		GrammarVersion: "grammar-v1",
		Speaker: resolution.EntityResolution{CharacterID: 1, Name: "Vex", Deltas: []resolution.AxisDelta{
			{Axis: "demeanor", OldScore: 0.87, NewScore: 0.9, Delta: 0.03},
		}},
		Listener:      resolution.EntityResolution{CharacterID: 2, Name: "Brin"},
		LedgerEventID: "evt-1",
		Writes: resolution.WriteReport{
			Ledger:   resolution.WriteOutcome{State: resolution.WriteApplied},
			Speaker:  resolution.WriteOutcome{State: resolution.WriteApplied},
			Listener: resolution.WriteOutcome{State: resolution.WriteSkipped},
		},
	}}
	mux := newTestMux(engine)

	recorder := postResolve(t, mux, `{"world_id":"w-1","speaker":"Vex","listener":"Brin","channel":"say"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var response resolveResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response.Fingerprint != "abc123" {
		t.Fatalf("expected fingerprint, got %q", response.Fingerprint)
	}
	if len(response.Speaker.Deltas) != 1 || response.Speaker.Deltas[0].NewScore != 0.9 {
		t.Fatalf("expected speaker delta in response, got %+v", response.Speaker)
	}
	if response.ListenerWrite.State != "skipped" {
		t.Fatalf("expected skipped listener write, got %+v", response.ListenerWrite)
	}
	if engine.lastWorldID != "w-1" || engine.lastChannel != "say" {
		t.Fatalf("expected request forwarded to engine, got world=%q channel=%q", engine.lastWorldID, engine.lastChannel)
	}
}

func TestHandleResolveRejectsNonPost(t *testing.T) {
	mux := newTestMux(&fakeResolver{})
	request := httptest.NewRequest(http.MethodGet, "/v1/resolve", nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}

func TestHandleResolveRejectsBadBody(t *testing.T) {
	mux := newTestMux(&fakeResolver{})
	recorder := postResolve(t, mux, "{not json")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestHandleResolveRejectsMissingFields(t *testing.T) {
	mux := newTestMux(&fakeResolver{})
	recorder := postResolve(t, mux, `{"world_id":"w-1","speaker":"Vex"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestHandleResolveErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "character not found",
			err:        apperrors.New(apperrors.CodeCharacterNotFound, "character not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "character_not_found",
		},
		{
			name:       "unknown channel",
			err:        apperrors.New(apperrors.CodeGrammarUnknownChannel, "unknown channel"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "grammar_unknown_channel",
		},
		{
			name:       "internal",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(&fakeResolver{err: tc.err})
			recorder := postResolve(t, mux, `{"world_id":"w-1","speaker":"Vex","listener":"Brin","channel":"say"}`)
			if recorder.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tc.wantCode != "" && !strings.Contains(recorder.Body.String(), tc.wantCode) {
				t.Fatalf("expected error code %q in body, got %s", tc.wantCode, recorder.Body.String())
			}
		})
	}
}

func TestServerServesHealthAndResolve(t *testing.T) {
	server, err := newServer("127.0.0.1:0", "127.0.0.1:0", &fakeResolver{result: resolution.Result{
		Fingerprint: "abc123",
		WorldID:     "w-1",
	}}, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveDone:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})

	conn, err := grpc.NewClient(server.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	checkCtx, checkCancel := context.WithTimeout(ctx, 5*time.Second)
	defer checkCancel()
	response, err := grpc_health_v1.NewHealthClient(conn).Check(checkCtx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if response.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %s", response.GetStatus())
	}

	httpResponse, err := http.Post(
		"http://"+server.HTTPAddr()+"/v1/resolve",
		"application/json",
		strings.NewReader(`{"world_id":"w-1","speaker":"Vex","listener":"Brin","channel":"say"}`),
	)
	if err != nil {
		t.Fatalf("post resolve: %v", err)
	}
	defer httpResponse.Body.Close()
	if httpResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", httpResponse.StatusCode)
	}
	var resolved resolveResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&resolved); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resolved.Fingerprint != "abc123" {
		t.Fatalf("expected fingerprint, got %q", resolved.Fingerprint)
	}
}

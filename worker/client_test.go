package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/shelfbot/core/config"
	"github.com/m3rciful/shelfbot/dialog"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := coreconfig.RuntimeConfig{
		BaseURL:      srv.URL,
		Token:        "secret",
		StepFunction: "api/step",
	}
	return NewClient(cfg, 5*time.Second)
}

func TestCreateSendsTemplateBody(t *testing.T) {
	var got createRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/templates/book-tpl/workers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"workerId": map[string]any{"workerName": got.Name},
		})
	}))

	err := c.Create(context.Background(), "book-tpl", "w-1", [][2]string{{"TELEGRAM_TOKEN", "tok"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Name != "w-1" {
		t.Errorf("name = %q, want w-1", got.Name)
	}
	if len(got.Env) != 1 || got.Env[0] != [2]string{"TELEGRAM_TOKEN", "tok"} {
		t.Errorf("env = %v", got.Env)
	}
	if got.Args == nil || len(got.Args) != 0 {
		t.Errorf("args = %v, want empty list", got.Args)
	}
}

func TestCreateRejectsNameMismatch(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"workerId": map[string]any{"workerName": "other"},
		})
	}))

	err := c.Create(context.Background(), "book-tpl", "w-1", nil)
	if !IsKind(err, KindCreate) {
		t.Fatalf("err = %v, want create kind", err)
	}
}

func TestCreateServerError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	err := c.Create(context.Background(), "book-tpl", "w-1", nil)
	if !IsKind(err, KindCreate) {
		t.Fatalf("err = %v, want create kind", err)
	}
	var we *Error
	if !errors.As(err, &we) || we.Retryable() {
		t.Errorf("create failures must not be retryable: %v", err)
	}
}

func TestInvocationKey(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/templates/book-tpl/workers/w-1/key" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"value": "key-1"})
	}))

	key, err := c.InvocationKey(context.Background(), "book-tpl", "w-1")
	if err != nil {
		t.Fatalf("InvocationKey: %v", err)
	}
	if key != "key-1" {
		t.Errorf("key = %q", key)
	}
}

func TestInvocationKeyMissingValue(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := c.InvocationKey(context.Background(), "book-tpl", "w-1")
	if !IsKind(err, KindCredential) {
		t.Fatalf("err = %v, want credential kind", err)
	}
}

func TestInvokeStepRoundTrip(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/templates/book-tpl/workers/w-1/invoke-and-await" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("invocation-key") != "key-1" {
			t.Errorf("invocation-key = %q", q.Get("invocation-key"))
		}
		if q.Get("function") != "api/step" {
			t.Errorf("function = %q", q.Get("function"))
		}

		var req invokeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(req.Params) != 1 {
			t.Fatalf("params = %v, want one element", req.Params)
		}
		var ev dialog.Event
		if err := json.Unmarshal([]byte(req.Params[0]), &ev); err != nil {
			t.Fatalf("decode event param: %v", err)
		}
		if ev.Kind != dialog.EventText || ev.Text != "Dune" {
			t.Errorf("event = %+v", ev)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"result": []any{dialog.Outcome{Message: "Enter author"}},
		})
	}))

	out, err := c.InvokeStep(context.Background(), "book-tpl", "w-1", "key-1", dialog.TextProvided("Dune"))
	if err != nil {
		t.Fatalf("InvokeStep: %v", err)
	}
	if out.Message != "Enter author" {
		t.Errorf("message = %q", out.Message)
	}
}

func TestInvokeStepEmptyEnvelope(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))

	_, err := c.InvokeStep(context.Background(), "book-tpl", "w-1", "key-1", dialog.Start())
	if !IsKind(err, KindInvoke) {
		t.Fatalf("err = %v, want invoke kind", err)
	}
}

func TestInvokeStepServerError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "worker crashed", http.StatusBadGateway)
	}))

	_, err := c.InvokeStep(context.Background(), "book-tpl", "w-1", "key-1", dialog.Start())
	if !IsKind(err, KindInvoke) {
		t.Fatalf("err = %v, want invoke kind", err)
	}
}

func TestDeleteBestEffort(t *testing.T) {
	deleted := false
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/templates/book-tpl/workers/w-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		deleted = true
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.Delete(context.Background(), "book-tpl", "w-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("delete request never reached the runtime")
	}
}

func TestDeleteReportsFailure(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	err := c.Delete(context.Background(), "book-tpl", "w-1")
	if !IsKind(err, KindDelete) {
		t.Fatalf("err = %v, want delete kind", err)
	}
}

func TestNewIDUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("ids collide: %s", a)
	}
	if a == "" {
		t.Fatal("empty id")
	}
}

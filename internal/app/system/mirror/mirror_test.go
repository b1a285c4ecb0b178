package mirror_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/temahub/internal/app/system/mirror"
	"go.uber.org/zap"
)

func TestMirror_UploadsQueuedFiles(t *testing.T) {
	var mu sync.Mutex
	got := make(map[string]string)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method: got %s, want PUT", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got[r.URL.Path] = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	m := mirror.New(srv.URL, zap.NewNop())
	m.Start()

	m.Enqueue("submissions/MA6G1/report.pdf", []byte("report bytes"))
	m.Enqueue("submissions/MA6G1/slides.pdf", []byte("slides bytes"))

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("uploads never arrived, got %d", n)
		case <-time.After(10 * time.Millisecond):
		}
	}
	m.Stop()

	mu.Lock()
	defer mu.Unlock()
	if got["/submissions/MA6G1/report.pdf"] != "report bytes" {
		t.Errorf("report body: got %q", got["/submissions/MA6G1/report.pdf"])
	}
}

func TestMirror_DisabledIsNoOp(t *testing.T) {
	m := mirror.New("", zap.NewNop())
	if m.Enabled() {
		t.Error("expected mirror with empty base URL to be disabled")
	}
	// None of these may panic or block.
	m.Start()
	m.Enqueue("key", []byte("data"))
	m.Stop()
}

func TestMirror_ServerErrorDoesNotCrash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := mirror.New(srv.URL, zap.NewNop())
	m.Start()
	m.Enqueue("key", []byte("data"))
	time.Sleep(100 * time.Millisecond)
	m.Stop()
}

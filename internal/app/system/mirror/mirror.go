// internal/app/system/mirror/mirror.go
//
// Package mirror replicates accepted submission files to a secondary
// endpoint over HTTP. Mirroring is best effort: a failed or dropped copy
// is logged and never fails the submission that triggered it.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize      = 64
	requestTimeout = 30 * time.Second
)

type job struct {
	key  string
	data []byte
}

// Mirror is a background worker that PUTs files to baseURL/<key>.
type Mirror struct {
	base   string
	client *http.Client
	log    *zap.Logger
	jobs   chan job
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a mirror worker. An empty baseURL disables mirroring;
// Enqueue becomes a no-op so callers never need to check.
func New(baseURL string, logger *zap.Logger) *Mirror {
	return &Mirror{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: requestTimeout},
		log:    logger,
		jobs:   make(chan job, queueSize),
		stopCh: make(chan struct{}),
	}
}

// Enabled reports whether a mirror endpoint is configured.
func (m *Mirror) Enabled() bool { return m.base != "" }

// Start begins the upload loop. No-op when disabled.
func (m *Mirror) Start() {
	if !m.Enabled() {
		return
	}
	m.wg.Add(1)
	go m.run()
	m.log.Info("submission mirror started", zap.String("base_url", m.base))
}

// Stop drains nothing; queued jobs not yet sent are dropped. Mirroring
// is repopulated on the next submission cycle anyway.
func (m *Mirror) Stop() {
	if !m.Enabled() {
		return
	}
	close(m.stopCh)
	m.wg.Wait()
	m.log.Info("submission mirror stopped")
}

// Enqueue schedules a copy of data under key. When the queue is full the
// job is dropped with a warning rather than blocking the request.
func (m *Mirror) Enqueue(key string, data []byte) {
	if !m.Enabled() {
		return
	}
	select {
	case m.jobs <- job{key: key, data: data}:
	default:
		m.log.Warn("mirror queue full, dropping copy", zap.String("key", key))
	}
}

func (m *Mirror) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case j := <-m.jobs:
			m.send(j)
		}
	}
}

func (m *Mirror) send(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	url := m.base + "/" + strings.TrimLeft(j.key, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(j.data))
	if err != nil {
		m.log.Warn("mirror request build failed", zap.String("key", j.key), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Warn("mirror upload failed", zap.String("key", j.key), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.log.Warn("mirror upload rejected",
			zap.String("key", j.key),
			zap.String("status", fmt.Sprintf("%d", resp.StatusCode)))
		return
	}
	m.log.Debug("mirror upload ok", zap.String("key", j.key), zap.Int("bytes", len(j.data)))
}

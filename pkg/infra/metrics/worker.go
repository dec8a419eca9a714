package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueSize     = 1000
	DefaultExportTimeout = 5 * time.Second
)

// Worker fans finished decisions out to the configured exporters off the
// request path. Publish never blocks; a full queue drops the decision.
type Worker interface {
	Publish(d *decision.Decision)
	StartWorkers(n int)
	Shutdown()
}

type worker struct {
	logger    *logrus.Logger
	exporters []telemetry.Exporter
	taskChan  chan *decision.Decision
	timeout   time.Duration
	wg        sync.WaitGroup
	closed    atomic.Bool
	mu        sync.RWMutex
}

type WorkerOption func(*worker)

func WithQueueSize(n int) WorkerOption {
	return func(w *worker) {
		if n > 0 {
			w.taskChan = make(chan *decision.Decision, n)
		}
	}
}

func WithExportTimeout(d time.Duration) WorkerOption {
	return func(w *worker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func NewWorker(logger *logrus.Logger, exporters []telemetry.Exporter, opts ...WorkerOption) Worker {
	w := &worker{
		logger:    logger,
		exporters: exporters,
		taskChan:  make(chan *decision.Decision, DefaultQueueSize),
		timeout:   DefaultExportTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *worker) Publish(d *decision.Decision) {
	if d == nil || len(w.exporters) == 0 {
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed.Load() {
		return
	}
	select {
	case w.taskChan <- d:
	default:
		prometheus.ExportedDecisions.WithLabelValues("queue", "dropped").Inc()
		w.logger.WithField("session_id", d.SessionID).Warn("decision queue is full, dropping decision")
	}
}

func (w *worker) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	w.logger.WithField("workers", n).Info("starting decision workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for d := range w.taskChan {
				w.export(d)
			}
		}()
	}
}

// Shutdown stops accepting decisions, drains the queue and closes the
// exporters.
func (w *worker) Shutdown() {
	w.mu.Lock()
	if w.closed.Swap(true) {
		w.mu.Unlock()
		return
	}
	close(w.taskChan)
	w.mu.Unlock()

	w.logger.Info("shutting down decision workers")
	w.wg.Wait()
	for _, exporter := range w.exporters {
		exporter.Close()
	}
	w.logger.Info("decision workers stopped")
}

func (w *worker) export(d *decision.Decision) {
	for _, exporter := range w.exporters {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := exporter.Handle(ctx, d)
		cancel()
		if err != nil {
			prometheus.ExportedDecisions.WithLabelValues(exporter.Name(), "error").Inc()
			w.logger.WithFields(logrus.Fields{
				"exporter":    exporter.Name(),
				"session_id":  d.SessionID,
				"decision_id": d.ID.String(),
			}).WithError(err).Error("exporter failed")
			continue
		}
		prometheus.ExportedDecisions.WithLabelValues(exporter.Name(), "ok").Inc()
	}
}

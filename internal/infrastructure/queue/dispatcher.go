package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/api/metrics"
	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes stock movements to a fixed set of workers using consistent
// hashing on the sweet id, preserving per-sweet ordering.
type Dispatcher struct {
	workers []chan domain.StockMovement
	labels  []string
	service ports.MovementService
	log     zerolog.Logger

	// mu guards stopped and the closing of the worker channels.
	mu      sync.RWMutex
	stopped bool
	dropped atomic.Int64
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.MovementService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.StockMovement, numWorkers),
		labels:  make([]string, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StockMovement, channelBuffer)
		d.labels[i] = strconv.Itoa(i)
	}
	return d
}

// Start launches all worker goroutines. Once ctx is cancelled the dispatcher
// stops accepting movements; workers finish what is already buffered and exit.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stop()
	}()
}

func (d *Dispatcher) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
}

// Dropped reports how many movements were refused after shutdown.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Wait blocks until every worker has drained its buffer and returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends a movement to the worker responsible for its sweet. It blocks
// while that worker's buffer is full and drops the movement once the
// dispatcher has been stopped.
func (d *Dispatcher) Enqueue(m domain.StockMovement) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.dropped.Add(1)
		metrics.MovementsDroppedTotal.Inc()
		d.log.Warn().Str("sweet_id", m.SweetID).Msg("dispatcher stopped, movement dropped")
		return
	}

	idx := d.shardIndex(m.SweetID)
	d.workers[idx] <- m
	metrics.MovementQueueDepth.WithLabelValues(d.labels[idx]).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a sweet id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sweetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sweetID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StockMovement) {
	defer d.wg.Done()
	// Persist with a context that outlives cancellation so buffered movements
	// are still written during shutdown.
	procCtx := context.WithoutCancel(ctx)
	for m := range ch {
		metrics.MovementQueueDepth.WithLabelValues(d.labels[id]).Set(float64(len(ch)))

		start := time.Now()
		result := "ok"
		if err := d.service.Process(procCtx, m); err != nil {
			result = "error"
			d.log.Error().Err(err).
				Str("sweet_id", m.SweetID).
				Str("kind", string(m.Kind)).
				Int("worker_id", id).
				Msg("movement processing failed")
		}
		metrics.MovementProcessingDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}
}

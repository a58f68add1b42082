// Package exporter offloads format-bridge exports to a background worker.
// Exports are the only site operation allowed off the edit thread: the
// worker receives an immutable snapshot, translates and stores it, and
// reports back through a completion queue the edit thread drains on its
// next tick. The site model itself is never touched from the worker.
package exporter

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"siteforge/internal/blob"
	"siteforge/internal/format"
	"siteforge/pkg/domain"
)

// JobID identifies a submitted export.
type JobID uint64

// Completion reports the outcome of one export job.
type Completion struct {
	Job      JobID
	Target   format.Target
	Key      string
	Info     blob.Info
	Err      error
	Duration time.Duration
}

type job struct {
	id     JobID
	site   domain.Site
	target format.Target
	key    string
}

// Worker runs exports on a single background goroutine.
type Worker struct {
	store blob.Store

	jobs        chan job
	completions chan Completion
	wg          sync.WaitGroup

	mu     sync.Mutex
	nextID JobID
	closed bool
}

const queueDepth = 16

// NewWorker starts the export goroutine writing artifacts to store.
func NewWorker(store blob.Store) *Worker {
	w := &Worker{
		store:       store,
		jobs:        make(chan job, queueDepth),
		completions: make(chan Completion, queueDepth),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for j := range w.jobs {
		start := time.Now()
		info, err := w.export(j)
		w.completions <- Completion{
			Job:      j.id,
			Target:   j.target,
			Key:      j.key,
			Info:     info,
			Err:      err,
			Duration: time.Since(start),
		}
	}
	close(w.completions)
}

func (w *Worker) export(j job) (blob.Info, error) {
	data, err := format.Export(j.site, j.target)
	if err != nil {
		return blob.Info{}, err
	}
	contentType := "application/json"
	if j.target != format.TargetSite {
		contentType = "application/xml"
	}
	return w.store.Put(context.Background(), j.key, bytes.NewReader(data), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"target": string(j.target), "site": j.site.Name},
	})
}

// Submit enqueues an export of the given snapshot. The snapshot is the
// caller's copy; the worker never sees live store state.
func (w *Worker) Submit(site domain.Site, target format.Target, key string) (JobID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, fmt.Errorf("export worker closed")
	}
	w.nextID++
	id := w.nextID
	w.jobs <- job{id: id, site: site, target: target, key: key}
	return id, nil
}

// Tick drains every completion that has arrived since the previous tick.
// It never blocks; the edit thread calls it once per frame.
func (w *Worker) Tick() []Completion {
	var out []Completion
	for {
		select {
		case c, ok := <-w.completions:
			if !ok {
				return out
			}
			out = append(out, c)
		default:
			return out
		}
	}
}

// Close stops the worker after the queued jobs finish. Remaining
// completions stay readable through Tick.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

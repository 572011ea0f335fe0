// Package asyncgit runs blocking repository operations on background
// goroutines and exposes their state to a UI loop through polling.
//
// Each controller keeps at most one operation in flight. The UI goroutine
// calls Request, then polls IsPending, Progress and LastResult whenever a
// Notification arrives on the channel given at construction.
package asyncgit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// operation is the blocking work of a job. It streams progress to w.
type operation[R any] func(ctx context.Context, req R, w *progressWriter) error

type asyncJob[R any] struct {
	kind   Notification
	notify chan<- Notification
	run    operation[R]

	state      slot[R]
	lastResult slot[string]
	progress   slot[ProgressEvent]
}

func newAsyncJob[R any](kind Notification, notify chan<- Notification, run operation[R]) *asyncJob[R] {
	return &asyncJob[R]{kind: kind, notify: notify, run: run}
}

func (j *asyncJob[R]) IsPending() bool {
	return j.state.IsSet()
}

// LastResult returns the error message of the last completed operation. It
// reports false after a success or before the first operation finished.
func (j *asyncJob[R]) LastResult() (string, bool) {
	return j.lastResult.Get()
}

func (j *asyncJob[R]) Progress() (RemoteProgress, bool) {
	ev, ok := j.progress.Get()
	if !ok {
		return RemoteProgress{}, false
	}
	return ev.RemoteProgress(), true
}

// Request starts req on a new goroutine and returns immediately. A request
// made while another one is pending is dropped.
func (j *asyncJob[R]) Request(req R) error {
	slog.Debug("request", slog.String("kind", j.kind.String()))
	if j.IsPending() {
		slog.Debug("request dropped, operation pending", slog.String("kind", j.kind.String()))
		return nil
	}
	if !j.state.claim(req) {
		return giterr.Generic("pending request")
	}
	j.progress.Clear()

	id := uuid.New()
	go j.work(id, req)
	return nil
}

func (j *asyncJob[R]) work(id uuid.UUID, req R) {
	logger := slog.With(slog.String("job", id.String()), slog.String("kind", j.kind.String()))
	logger.Debug("job started")

	queue := newProgressQueue()
	relayDone := spawnRelay(queue, &j.progress, j.kind, j.notify)
	w := newProgressWriter(queue)

	err := j.runRecovered(req, w)

	w.flush()
	queue.send(ProgressEvent{Kind: ProgressDone})
	<-relayDone

	if err != nil {
		logger.Error(j.kind.String()+" error", slog.Any("error", err))
		j.lastResult.Set(giterr.Message(err))
	} else {
		logger.Debug("job finished")
		j.lastResult.Clear()
	}
	j.state.Clear()
	notifyDone(j.notify, j.kind)
}

// runRecovered converts a panic of the operation into a Generic error so the
// controller keeps working after a failed job.
func (j *asyncJob[R]) runRecovered(req R, w *progressWriter) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = giterr.FromPanic(v)
		}
	}()
	return j.run(context.Background(), req, w)
}

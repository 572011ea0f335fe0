package asyncgit

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

type ProgressKind uint8

const (
	// ProgressStatus carries a free form status line.
	ProgressStatus ProgressKind = iota
	// ProgressCount carries Current out of Total items of a Phase.
	ProgressCount
	// ProgressDone ends the event stream of a job.
	ProgressDone
)

type ProgressEvent struct {
	Kind    ProgressKind
	Phase   string
	Current int
	Total   int
	Text    string
}

type RemoteProgressState uint8

const (
	RemoteProgressPacking RemoteProgressState = iota
	RemoteProgressPushing
	RemoteProgressTransfer
	RemoteProgressDone
)

func (s RemoteProgressState) String() string {
	switch s {
	case RemoteProgressPacking:
		return "packing"
	case RemoteProgressPushing:
		return "pushing"
	case RemoteProgressTransfer:
		return "transfer"
	case RemoteProgressDone:
		return "done"
	default:
		return "unknown"
	}
}

// RemoteProgress is what the UI renders for a running remote operation.
type RemoteProgress struct {
	State   RemoteProgressState
	Percent uint8
}

func (e ProgressEvent) RemoteProgress() RemoteProgress {
	switch e.Kind {
	case ProgressDone:
		return RemoteProgress{State: RemoteProgressDone, Percent: 100}
	case ProgressCount:
		return RemoteProgress{State: phaseState(e.Phase), Percent: percent(e.Current, e.Total)}
	default:
		return RemoteProgress{State: RemoteProgressTransfer}
	}
}

func phaseState(phase string) RemoteProgressState {
	phase = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(phase, "remote:")))
	switch {
	case strings.HasPrefix(phase, "enumerating"),
		strings.HasPrefix(phase, "counting"),
		strings.HasPrefix(phase, "compressing"):
		return RemoteProgressPacking
	case strings.HasPrefix(phase, "writing"):
		return RemoteProgressPushing
	default:
		return RemoteProgressTransfer
	}
}

func percent(current, total int) uint8 {
	if total <= 0 || current <= 0 {
		return 0
	}
	if current >= total {
		return 100
	}
	return uint8(current * 100 / total)
}

// progressQueue is an unbounded FIFO: send never blocks the producer and recv
// blocks until an event is available.
type progressQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	events []ProgressEvent
}

func newProgressQueue() *progressQueue {
	q := &progressQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *progressQueue) send(ev ProgressEvent) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *progressQueue) recv() ProgressEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.events) == 0 {
		q.cond.Wait()
	}
	ev := q.events[0]
	q.events[0] = ProgressEvent{}
	q.events = q.events[1:]
	return ev
}

// spawnRelay copies events from q into dst, requesting a redraw for each one,
// until it has relayed ProgressDone. The returned channel is closed when the
// relay exits.
func spawnRelay(q *progressQueue, dst *slot[ProgressEvent], kind Notification, notify chan<- Notification) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			ev := q.recv()
			dst.Set(ev)
			notifyRedraw(notify, kind)
			if ev.Kind == ProgressDone {
				return
			}
		}
	}()
	return done
}

// progressLine matches git progress output such as
// "Counting objects:  50% (1/2)" and "Enumerating objects: 5, done.".
var progressLine = regexp.MustCompile(`^([^:]+):\s+(?:(\d+)%\s+\((\d+)/(\d+)\)|(\d+))`)

// progressWriter turns the sideband text written by git transports into
// events on a progressQueue. Lines may end in \r or \n.
type progressWriter struct {
	q   *progressQueue
	buf []byte
}

func newProgressWriter(q *progressQueue) *progressWriter {
	return &progressWriter{q: q}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Status reports a step of the job that is not transport output.
func (w *progressWriter) Status(text string) {
	w.q.send(ProgressEvent{Kind: ProgressStatus, Text: text})
}

// flush emits a trailing line that was not terminated.
func (w *progressWriter) flush() {
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *progressWriter) emit(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	w.q.send(parseProgressLine(line))
}

func parseProgressLine(line string) ProgressEvent {
	m := progressLine.FindStringSubmatch(line)
	if m == nil {
		return ProgressEvent{Kind: ProgressStatus, Text: line}
	}
	ev := ProgressEvent{Kind: ProgressCount, Phase: strings.TrimSpace(m[1]), Text: line}
	if m[5] != "" {
		ev.Current, _ = strconv.Atoi(m[5])
		ev.Total = ev.Current
		if !strings.Contains(line, "done") {
			ev.Total = 0
		}
		return ev
	}
	ev.Current, _ = strconv.Atoi(m[3])
	ev.Total, _ = strconv.Atoi(m[4])
	return ev
}

package asyncgit

// Notification tells the UI loop which part of the repository view needs a
// redraw.
type Notification uint8

const (
	NotificationPush Notification = iota
	NotificationFetch
	NotificationPull
	NotificationRepoState
)

func (n Notification) String() string {
	switch n {
	case NotificationPush:
		return "push"
	case NotificationFetch:
		return "fetch"
	case NotificationPull:
		return "pull"
	case NotificationRepoState:
		return "repo-state"
	default:
		return "unknown"
	}
}

// notifyRedraw sends without blocking. Redraws are idempotent, so one that
// does not fit in the channel is dropped.
func notifyRedraw(ch chan<- Notification, n Notification) {
	if ch == nil {
		return
	}
	select {
	case ch <- n:
	default:
	}
}

// notifyDone blocks until the UI loop receives the final notification of an
// operation.
func notifyDone(ch chan<- Notification, n Notification) {
	if ch == nil {
		return
	}
	ch <- n
}

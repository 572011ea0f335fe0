package asyncgit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifyRedraw_DropsWhenFull(t *testing.T) {
	t.Parallel()

	ch := make(chan Notification, 1)
	notifyRedraw(ch, NotificationPush)

	done := make(chan struct{})
	go func() {
		defer close(done)
		notifyRedraw(ch, NotificationFetch)
		notifyRedraw(nil, NotificationFetch)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifyRedraw blocked on a full channel")
	}

	assert.Len(t, ch, 1)
	assert.Equal(t, NotificationPush, <-ch)
}

func TestNotifyDone_BlocksUntilReceived(t *testing.T) {
	t.Parallel()

	ch := make(chan Notification)
	sent := make(chan struct{})
	go func() {
		notifyDone(ch, NotificationPull)
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("notifyDone returned before the notification was received")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, NotificationPull, <-ch)
	<-sent

	notifyDone(nil, NotificationPull)
}

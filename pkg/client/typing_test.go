package client

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type changeLog struct {
	mu      sync.Mutex
	changes []string
}

func (l *changeLog) record(chatID string, typing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if typing {
		l.changes = append(l.changes, chatID+":on")
	} else {
		l.changes = append(l.changes, chatID+":off")
	}
}

func (l *changeLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.changes))
	copy(out, l.changes)
	return out
}

func newShortTracker(log *changeLog, ttl time.Duration) *TypingTracker {
	tr := NewTypingTracker(log.record)
	tr.ttl = ttl
	return tr
}

func TestTypingLightsIndicator(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, time.Minute)
	defer tr.Close()

	tr.Typing("c1")

	assert.True(t, tr.IsTyping("c1"))
	assert.Equal(t, []string{"c1:on"}, log.snapshot())
}

func TestTypingRefreshDoesNotRefire(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, time.Minute)
	defer tr.Close()

	tr.Typing("c1")
	tr.Typing("c1")
	tr.Typing("c1")

	assert.Equal(t, []string{"c1:on"}, log.snapshot())
}

func TestTypingExpiresWithoutRefresh(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, 40*time.Millisecond)
	defer tr.Close()

	tr.Typing("c1")

	assert.Eventually(t, func() bool {
		return !tr.IsTyping("c1")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"c1:on", "c1:off"}, log.snapshot())
}

func TestTypingRefreshPostponesExpiry(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, 80*time.Millisecond)
	defer tr.Close()

	tr.Typing("c1")
	time.Sleep(50 * time.Millisecond)
	tr.Typing("c1")
	time.Sleep(50 * time.Millisecond)

	assert.True(t, tr.IsTyping("c1"))
}

func TestStopTypingClearsImmediately(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, time.Minute)
	defer tr.Close()

	tr.Typing("c1")
	tr.StopTyping("c1")

	assert.False(t, tr.IsTyping("c1"))
	assert.Equal(t, []string{"c1:on", "c1:off"}, log.snapshot())
}

func TestStopTypingWhenIdleIsSilent(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, time.Minute)
	defer tr.Close()

	tr.StopTyping("c1")

	assert.Empty(t, log.snapshot())
}

func TestTypingIndicatorsArePerChat(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, time.Minute)
	defer tr.Close()

	tr.Typing("c1")
	tr.Typing("c2")
	tr.StopTyping("c1")

	assert.False(t, tr.IsTyping("c1"))
	assert.True(t, tr.IsTyping("c2"))
}

func TestCloseClearsAllWithoutCallbacks(t *testing.T) {
	log := &changeLog{}
	tr := newShortTracker(log, time.Minute)

	tr.Typing("c1")
	tr.Typing("c2")
	tr.Close()

	assert.False(t, tr.IsTyping("c1"))
	assert.False(t, tr.IsTyping("c2"))
	assert.Equal(t, []string{"c1:on", "c2:on"}, log.snapshot())
}

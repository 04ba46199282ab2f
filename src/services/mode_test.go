package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeStartsLive(t *testing.T) {
	m := NewModeCoordinator()
	assert.Equal(t, ModeLive, m.Current())
	assert.False(t, m.IsOffline())
}

func TestGoOfflineNotifiesSubscribersOnce(t *testing.T) {
	m := NewModeCoordinator()
	ch, cancel := m.Subscribe()
	defer cancel()

	m.GoOffline("quota")
	m.GoOffline("quota again")

	change := <-ch
	assert.Equal(t, ModeOffline, change.Mode)
	assert.Equal(t, "quota", change.Reason)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected second notification: %+v", extra)
	default:
	}

	status := m.Status()
	assert.Equal(t, ModeOffline, status.Mode)
	assert.Equal(t, "quota", status.Reason)
}

func TestGoLiveAfterOffline(t *testing.T) {
	m := NewModeCoordinator()
	ch, cancel := m.Subscribe()
	defer cancel()

	m.GoOffline("quota")
	<-ch
	m.GoLive()

	change := <-ch
	assert.Equal(t, ModeLive, change.Mode)
	assert.Equal(t, ModeLive, m.Current())
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	m := NewModeCoordinator()
	_, cancel := m.Subscribe()
	defer cancel()

	// The buffer holds one change; further ones are dropped, not blocked on.
	m.GoOffline("a")
	m.GoLive()
	m.GoOffline("b")
	assert.Equal(t, ModeOffline, m.Current())
}

func TestCancelClosesChannel(t *testing.T) {
	m := NewModeCoordinator()
	ch, cancel := m.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	require.False(t, open)

	m.GoOffline("after cancel")
	assert.Equal(t, ModeOffline, m.Current())
}

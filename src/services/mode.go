package services

import (
	"sync"
	"time"

	"github.com/username/finboard/src/logger"
)

// Mode says whether external APIs are called or simulated data is served.
type Mode string

const (
	ModeLive    Mode = "live"
	ModeOffline Mode = "offline"
)

// ModeChange is delivered to subscribers on every transition.
type ModeChange struct {
	Mode   Mode      `json:"mode"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// ModeCoordinator is the single owner of the live/offline flag. Services read
// it before each live call; the AI service flips it when its quota runs out.
type ModeCoordinator struct {
	mu     sync.Mutex
	status ModeChange
	subs   map[int]chan ModeChange
	nextID int
	now    func() time.Time
}

func NewModeCoordinator() *ModeCoordinator {
	return &ModeCoordinator{
		status: ModeChange{Mode: ModeLive, At: time.Now()},
		subs:   make(map[int]chan ModeChange),
		now:    time.Now,
	}
}

// Current returns the active mode.
func (m *ModeCoordinator) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.Mode
}

// Status returns the active mode with the reason and time of the last change.
func (m *ModeCoordinator) Status() ModeChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// IsOffline reports whether live calls must be skipped.
func (m *ModeCoordinator) IsOffline() bool {
	return m.Current() == ModeOffline
}

// GoOffline switches to simulated data. Repeated calls do not notify again.
func (m *ModeCoordinator) GoOffline(reason string) {
	m.set(ModeOffline, reason)
}

// GoLive re-enables live calls.
func (m *ModeCoordinator) GoLive() {
	m.set(ModeLive, "")
}

func (m *ModeCoordinator) set(mode Mode, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.Mode == mode {
		return
	}
	m.status = ModeChange{Mode: mode, Reason: reason, At: m.now()}
	logger.L.Warn("API mode changed", "mode", mode, "reason", reason)

	for _, ch := range m.subs {
		// Slow subscribers miss intermediate changes; they can read Status.
		select {
		case ch <- m.status:
		default:
		}
	}
}

// Subscribe returns a channel of mode changes and a func that unsubscribes
// and closes the channel.
func (m *ModeCoordinator) Subscribe() (<-chan ModeChange, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan ModeChange, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

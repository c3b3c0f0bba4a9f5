package internal

import "sync"

// RWMutexByRoom hands out one RWMutex per room id, so one writer can
// apply state to a room while readers of other rooms proceed and
// readers of the same room share the lock.
type RWMutexByRoom struct {
	mu       *sync.Mutex // protects the map
	roomToMu map[string]*sync.RWMutex
}

func NewRWMutexByRoom() *RWMutexByRoom {
	return &RWMutexByRoom{
		mu:       &sync.Mutex{},
		roomToMu: make(map[string]*sync.RWMutex),
	}
}

func (m *RWMutexByRoom) forRoom(roomID string) *sync.RWMutex {
	m.mu.Lock()
	roomMu := m.roomToMu[roomID]
	if roomMu == nil {
		roomMu = &sync.RWMutex{}
		m.roomToMu[roomID] = roomMu
	}
	m.mu.Unlock()
	return roomMu
}

func (m *RWMutexByRoom) Lock(roomID string) {
	// don't lock inside m.mu else we can deadlock
	m.forRoom(roomID).Lock()
}

func (m *RWMutexByRoom) Unlock(roomID string) {
	m.mu.Lock()
	roomMu := m.roomToMu[roomID]
	if roomMu == nil {
		panic("RWMutexByRoom: Unlock before Lock")
	}
	m.mu.Unlock()
	roomMu.Unlock()
}

func (m *RWMutexByRoom) RLock(roomID string) {
	m.forRoom(roomID).RLock()
}

func (m *RWMutexByRoom) RUnlock(roomID string) {
	m.mu.Lock()
	roomMu := m.roomToMu[roomID]
	if roomMu == nil {
		panic("RWMutexByRoom: RUnlock before RLock")
	}
	m.mu.Unlock()
	roomMu.RUnlock()
}

package telegram

import "sync"

// tenantSessions maps a chat to its selected tenant.
type tenantSessions struct {
	mu      sync.RWMutex
	byChats map[int64]int64
}

func newTenantSessions() *tenantSessions {
	return &tenantSessions{byChats: make(map[int64]int64)}
}

func (s *tenantSessions) set(chatID, tenantID int64) {
	s.mu.Lock()
	s.byChats[chatID] = tenantID
	s.mu.Unlock()
}

func (s *tenantSessions) get(chatID int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenantID, ok := s.byChats[chatID]
	return tenantID, ok
}

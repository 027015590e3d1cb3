package session

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// MemoryStore хранит сессии в памяти процесса с TTL.
// Подходит только для одного инстанса сервиса.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

type memoryItem struct {
	session   *domain.Session
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, phone string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[phone]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(item.expiresAt) {
		delete(s.items, phone)
		return nil, nil
	}
	return item.session.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, phone string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[phone] = memoryItem{session: sess.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, phone)
	return nil
}

// Sweep удаляет истёкшие сессии и возвращает их количество
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for phone, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, phone)
			removed++
		}
	}
	return removed
}

// RunJanitor периодически вызывает Sweep до отмены контекста
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

package cart

import (
	"sync"

	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
)

// Sessions hands out one cart per user. Carts live in process memory only and
// are lost on restart.
type Sessions struct {
	mu     sync.Mutex
	engine *pricing.Engine
	carts  map[string]*Cart
}

func NewSessions(engine *pricing.Engine) *Sessions {
	return &Sessions{
		engine: engine,
		carts:  make(map[string]*Cart),
	}
}

// Get returns the user's cart, creating an empty one on first use
func (s *Sessions) Get(userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		c = New(s.engine)
		s.carts[userID] = c
	}
	return c
}

// Drop forgets the user's cart
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/henhouse-foods/storefront/internal/catalog"
	"github.com/henhouse-foods/storefront/internal/kv"
)

var ErrUnknownProduct = errors.New("product not found in catalog")

type Entry struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	OldPrice  *float64 `json:"old_price,omitempty"`
	Image     string   `json:"image"`
	InStock   bool     `json:"in_stock"`
}

// Store owns the saved-for-later product references for one session.
// At most one entry per product id; Add is idempotent. Same persistence
// contract as the cart, under its own storage key.
type Store struct {
	mu       sync.Mutex
	storage  kv.Store
	key      string
	resolver catalog.Resolver
	entries  []Entry
}

func New(ctx context.Context, storage kv.Store, key string, resolver catalog.Resolver) *Store {
	s := &Store{storage: storage, key: key, resolver: resolver}
	s.entries = hydrate(ctx, storage, key)
	return s
}

func hydrate(ctx context.Context, storage kv.Store, key string) []Entry {
	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		log.Printf("wishlist: load %s: %v", key, err)
		return nil
	}
	if !ok {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("wishlist: corrupted snapshot at %s, resetting: %v", key, err)
		return nil
	}
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.ProductID == "" || seen[e.ProductID] {
			continue
		}
		seen[e.ProductID] = true
		out = append(out, e)
	}
	return out
}

// Add saves a product reference. Adding an id that is already present is a
// no-op; an unknown id leaves the wishlist untouched.
func (s *Store) Add(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ProductID == productID {
			return nil
		}
	}

	p, found, err := s.resolver.Resolve(ctx, productID)
	if err != nil {
		log.Printf("wishlist: resolve %s: %v", productID, err)
		return ErrUnknownProduct
	}
	if !found {
		log.Printf("wishlist: add unknown product %s ignored", productID)
		return ErrUnknownProduct
	}

	s.entries = append(s.entries, Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		OldPrice:  p.OldPrice,
		Image:     p.Image,
		InStock:   p.InStock,
	})
	s.persist(ctx)
	return nil
}

func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.persist(ctx)
}

func (s *Store) Has(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) persist(ctx context.Context) {
	b, err := json.Marshal(s.entries)
	if err != nil {
		log.Printf("wishlist: marshal snapshot: %v", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, string(b)); err != nil {
		log.Printf("wishlist: persist %s: %v", s.key, err)
	}
}

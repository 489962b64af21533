package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"

	"github.com/henhouse-foods/storefront/internal/catalog"
	"github.com/henhouse-foods/storefront/internal/kv"
)

var ErrUnknownProduct = errors.New("product not found in catalog")

// LineItem carries a snapshot of the product taken when it entered the cart,
// so rendering never needs a live catalog join.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Store owns the cart line items for one session. At most one entry per
// product id; an entry with quantity <= 0 never exists, it is removed instead.
// Every mutation rewrites the full snapshot under the storage key.
type Store struct {
	mu       sync.Mutex
	storage  kv.Store
	key      string
	resolver catalog.Resolver
	items    []LineItem
}

// New hydrates the store from storage. A corrupted snapshot resets the cart
// to empty; it is never surfaced to callers.
func New(ctx context.Context, storage kv.Store, key string, resolver catalog.Resolver) *Store {
	s := &Store{storage: storage, key: key, resolver: resolver}
	s.items = hydrate(ctx, storage, key)
	return s
}

func hydrate(ctx context.Context, storage kv.Store, key string) []LineItem {
	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		log.Printf("cart: load %s: %v", key, err)
		return nil
	}
	if !ok {
		return nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("cart: corrupted snapshot at %s, resetting: %v", key, err)
		return nil
	}
	// drop entries that violate the invariants
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		out = append(out, it)
	}
	return out
}

// AddItem increments the quantity when the product is already in the cart,
// otherwise resolves it and inserts a fresh snapshot. An unknown product id
// leaves the cart untouched and returns ErrUnknownProduct.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return nil
		}
	}

	p, found, err := s.resolver.Resolve(ctx, productID)
	if err != nil {
		log.Printf("cart: resolve %s: %v", productID, err)
		return ErrUnknownProduct
	}
	if !found {
		log.Printf("cart: add unknown product %s ignored", productID)
		return ErrUnknownProduct
	}

	s.items = append(s.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	s.persist(ctx)
	return nil
}

// UpdateQuantity replaces the stored quantity; zero or less removes the entry.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(ctx, productID)
		return
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist(ctx)
}

// Quantity returns 0 when the product is not in the cart.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Price * float64(it.Quantity)
	}
	return round2(total)
}

// Items returns a copy of the current line items.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// persist writes the full snapshot. Failures are logged, never surfaced:
// the in-memory state stays authoritative for the session.
func (s *Store) persist(ctx context.Context) {
	b, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("cart: marshal snapshot: %v", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, string(b)); err != nil {
		log.Printf("cart: persist %s: %v", s.key, err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

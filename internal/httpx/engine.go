package httpx

import (
	"context"
	"net/http"
	"sync"

	"github.com/henhouse-foods/storefront/internal/cart"
	"github.com/henhouse-foods/storefront/internal/checkout"
	"github.com/henhouse-foods/storefront/internal/wishlist"
)

const (
	sessionHeader  = "X-Session-ID"
	defaultSession = "default"
)

// Engine bundles the per-session stores and orchestrator. Both stores are
// the single source of truth for their data; every surface reads and writes
// through them so no independent counters can drift.
type Engine struct {
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Checkout *checkout.Orchestrator
}

// EngineFactory builds a hydrated engine for one session key.
type EngineFactory func(ctx context.Context, session string) *Engine

// engines caches one Engine per session so state (including the checkout
// machine) survives across requests.
type engines struct {
	mu      sync.Mutex
	factory EngineFactory
	m       map[string]*Engine
}

func newEngines(factory EngineFactory) *engines {
	return &engines{factory: factory, m: make(map[string]*Engine)}
}

func (e *engines) get(r *http.Request) *Engine {
	session := r.Header.Get(sessionHeader)
	if session == "" {
		session = defaultSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if eng, ok := e.m[session]; ok {
		return eng
	}
	eng := e.factory(r.Context(), session)
	e.m[session] = eng
	return eng
}

package kv

import (
	"fmt"
	"time"
)

const (
	// Cart snapshot per session: storefront:cart:{session}
	keyCart = "storefront:cart:%s"

	// Wishlist snapshot per session: storefront:wishlist:%s
	keyWishlist = "storefront:wishlist:%s"

	// Dedup for reconciliation event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour

func CartKey(session string) string     { return fmt.Sprintf(keyCart, session) }
func WishlistKey(session string) string { return fmt.Sprintf(keyWishlist, session) }

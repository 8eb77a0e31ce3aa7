package redisx

import "time"

const (
	// Storage areas: fb:client:{client_id}:{storage key}, fb:shared:{storage key}
	KeyStoragePrefix = "fb:"

	// Login attempts: ratelimit:{scope}:{identifier} -> hash{count,last}
	KeyRateLimit = "ratelimit:%s:%s"

	// Cache status order: order_status:{order_id} -> {"status": "...", "updated_at": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)

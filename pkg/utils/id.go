package utils

import (
	"fmt"
	"sync"
	"time"
)

// GenerateID creates schema-aligned IDs
// Format: prefix-timestamp-counter (e.g., "asset-1705612800000-001")
func GenerateID(prefix string) string {
	timestamp := time.Now().UnixMilli()
	counter := atomicCounter()
	return fmt.Sprintf("%s-%d-%03d", prefix, timestamp, counter)
}

// GenerateAssetID creates asset-specific ID
func GenerateAssetID() string {
	return GenerateID("asset")
}

// GenerateActivityID creates activity-specific ID
func GenerateActivityID() string {
	return GenerateID("act")
}

// GenerateDigestID creates digest-record-specific ID
func GenerateDigestID() string {
	return GenerateID("digest")
}

// atomicCounter provides thread-safe sequential counters
var (
	counter int64
	mu      sync.Mutex
)

func atomicCounter() int {
	mu.Lock()
	defer mu.Unlock()
	counter++
	return int(counter)
}

package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeBatchID computes a deterministic batch_id using SHA256.
// Formula: SHA256(seed|count|generated_at_unix_nano)
// Returns hex-encoded hash (64 characters). Labels one pipeline run: the
// same data regenerated later keeps its snapshot version but gets a new
// batch_id.
func ComputeBatchID(seed int64, count int, generatedAt time.Time) string {
	data := fmt.Sprintf("%d|%d|%d",
		seed,
		count,
		generatedAt.UnixNano(),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

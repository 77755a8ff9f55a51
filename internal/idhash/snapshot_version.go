package idhash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SnapshotVersionLen is the length of a snapshot version string.
const SnapshotVersionLen = 12

// ComputeSnapshotVersion computes a deterministic snapshot version using SHA256.
// Formula: first 12 hex characters of SHA256(canonical snapshot CSV bytes)
// Two snapshots share a version exactly when their canonical CSV bytes match.
func ComputeSnapshotVersion(csvBytes []byte) string {
	hash := sha256.Sum256(csvBytes)
	return hex.EncodeToString(hash[:])[:SnapshotVersionLen]
}

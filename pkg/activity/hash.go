package activity

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// computeHash computes a SHA-256 hash for chain integrity.
func computeHash(prevHash, id, eventType string, taskID int, timestamp time.Time, contentJSON []byte) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d|%s", prevHash, id, eventType, taskID, timestamp.UnixNano(), string(contentJSON))
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h)
}

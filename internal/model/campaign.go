package model

import (
	"log"
	"os"
	"sync"
)

// RecipientRow maps lowercase column names to trimmed cell values.
// Column sets are campaign-defined; every column is a template variable.
type RecipientRow map[string]string

// SendResult is one entry of the campaign ledger, in input row order.
type SendResult struct {
	To     string `json:"to"`
	Status string `json:"status"`
}

const StatusSent = "sent"

// Campaign is one bulk-send request. It exists only for the duration of a
// single API call and is never persisted.
type Campaign struct {
	Template string
	Rows     []RecipientRow
	Media    *MediaAsset

	mu        sync.Mutex
	tempFiles []string
	released  bool
}

// RegisterTempFile marks a staged file for unconditional deletion at
// campaign end.
func (c *Campaign) RegisterTempFile(path string) {
	if path == "" {
		return
	}
	c.mu.Lock()
	c.tempFiles = append(c.tempFiles, path)
	c.mu.Unlock()
}

// Release deletes every registered temp file. It is idempotent and best
// effort: a failed delete is logged and never masks the campaign outcome.
func (c *Campaign) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return
	}
	c.released = true

	for _, path := range c.tempFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠ Failed to delete temp file %s: %v", path, err)
			continue
		}
		log.Printf("🗑 Temp file deleted: %s", path)
	}
	c.tempFiles = nil
}

package wal

import (
	"fmt"
	"os"

	"github.com/alpacahq/walrecover/utils/log"
)

// Move renames oldFP to newFP. It refuses to replace an existing newFP, so a
// previously quarantined file is never lost.
func Move(oldFP, newFP string) error {
	if _, err := os.Lstat(newFP); err == nil {
		return fmt.Errorf("failed to move %s to %s: destination exists", oldFP, newFP)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", newFP, err)
	}
	if err := os.Rename(oldFP, newFP); err != nil {
		return fmt.Errorf("failed to move %s to %s:%w", oldFP, newFP, err)
	}
	log.Debug("moved %s to %s", oldFP, newFP)
	return nil
}

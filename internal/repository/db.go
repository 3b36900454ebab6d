package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// advisoryLock takes a transaction-scoped postgres advisory lock on key.
// It is released when the surrounding transaction ends.
func advisoryLock(tx *gorm.DB, key string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func pairKey(kind string, a, b uint) string {
	return fmt.Sprintf("%s:%d:%d", kind, a, b)
}

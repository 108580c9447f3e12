// Package repository provides the relational persistence layer backed by
// GORM.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound reports whether an error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

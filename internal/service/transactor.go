package service

import (
	"database/sql"

	"gorm.io/gorm"
)

// Transactor is the slice of *gorm.DB the transactional services depend on.
// *gorm.DB satisfies it directly; tests substitute an in-memory fake.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

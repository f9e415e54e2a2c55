package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) InTransaction(ctx context.Context, fn func(r Repos) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Accounts:    NewAccountRepository(tx),
			Tasks:       NewTaskRepository(tx),
			Completions: NewCompletionRepository(tx),
		})
	})
	return classifyTxError(err)
}

// classifyTxError maps driver failures onto the repository sentinels so
// callers can tell "retry the whole unit" apart from "datastore down".
// MySQL 1213 is a deadlock victim, 1205 a lock wait timeout; both roll the
// transaction back completely.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1213, 1205:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (m *txManager) SetDB(db *gorm.DB) {
	m.db = db
}

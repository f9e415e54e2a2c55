package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTxError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"deadlock victim", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, ErrConflict},
		{"lock wait timeout", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, ErrConflict},
		{"wrapped deadlock", fmt.Errorf("commit: %w", &mysql.MySQLError{Number: 1213}), ErrConflict},
		{"invalid connection", mysql.ErrInvalidConn, ErrUnavailable},
		{"other mysql error passes through", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, nil},
		{"plain error passes through", errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTxError(tt.in)
			require.Error(t, got)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				// The driver message survives in the wrapped text.
				assert.Contains(t, got.Error(), tt.want.Error())
			} else {
				assert.NotErrorIs(t, got, ErrConflict)
				assert.NotErrorIs(t, got, ErrUnavailable)
				assert.Equal(t, tt.in, got)
			}
		})
	}
}

func TestClassifyTxErrorNil(t *testing.T) {
	assert.NoError(t, classifyTxError(nil))
}

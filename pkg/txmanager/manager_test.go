package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/pkg/dbmetrics"
)

// fakeTx транзакция, возвращающая заданную ошибку на Commit
type fakeTx struct {
	commitErr error
	rollbacks int
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error   { return t.commitErr }
func (t *fakeTx) Rollback() error { t.rollbacks++; return nil }

// fakeBeginner выдает транзакции по номеру попытки,
// последняя из списка используется для всех оставшихся
type fakeBeginner struct {
	begins int
	txs    []*fakeTx
}

func (b *fakeBeginner) BeginTx(context.Context, *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := b.txs[len(b.txs)-1]
	if b.begins < len(b.txs) {
		tx = b.txs[b.begins]
	}
	b.begins++
	return tx, nil
}

func TestDoSerializable(t *testing.T) {
	ctx := context.Background()

	t.Run("serialization failure at commit is retried", func(t *testing.T) {
		beginner := &fakeBeginner{txs: []*fakeTx{
			{commitErr: &pq.Error{Code: "40001"}},
			{},
		}}
		m := NewTransactionManager(beginner)

		err := m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 2, beginner.begins)
	})

	t.Run("deadlock at commit is retried", func(t *testing.T) {
		beginner := &fakeBeginner{txs: []*fakeTx{
			{commitErr: &pq.Error{Code: "40P01"}},
			{},
		}}
		m := NewTransactionManager(beginner)

		err := m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 2, beginner.begins)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		beginner := &fakeBeginner{txs: []*fakeTx{{commitErr: &pq.Error{Code: "40001"}}}}
		m := NewTransactionManager(beginner)

		err := m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrSerializationFailure)
		assert.Equal(t, maxSerializableAttempts, beginner.begins)
	})

	t.Run("wrapped serialization failure from fn is retried", func(t *testing.T) {
		beginner := &fakeBeginner{txs: []*fakeTx{{}}}
		m := NewTransactionManager(beginner)

		// Ошибка в том виде, в каком её отдают репозитории
		calls := 0
		err := m.DoSerializable(ctx, func(ctx context.Context) error {
			calls++
			return fmt.Errorf("storage: execute query: %w", &pq.Error{Code: "40001"})
		})
		assert.ErrorIs(t, err, ErrSerializationFailure)
		assert.Equal(t, maxSerializableAttempts, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		beginner := &fakeBeginner{txs: []*fakeTx{{}}}
		m := NewTransactionManager(beginner)

		boom := errors.New("boom")
		err := m.DoSerializable(ctx, func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, beginner.begins)
	})
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("commit error keeps the driver error in the chain", func(t *testing.T) {
		beginner := &fakeBeginner{txs: []*fakeTx{{commitErr: &pq.Error{Code: "40001"}}}}
		m := NewTransactionManager(beginner)

		err := m.Do(ctx, func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrCommitTx)

		var pqErr *pq.Error
		require.ErrorAs(t, err, &pqErr)
		assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
	})

	t.Run("fn error rolls the transaction back", func(t *testing.T) {
		tx := &fakeTx{}
		beginner := &fakeBeginner{txs: []*fakeTx{tx}}
		m := NewTransactionManager(beginner)

		boom := errors.New("boom")
		err := m.Do(ctx, func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, tx.rollbacks)
	})
}

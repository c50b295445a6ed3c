package memory_test

import (
	"context"
	"errors"
	"testing"

	"bakery/internal/domain/model"
	"bakery/internal/infra/memory"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func seedProduct(t *testing.T, s *memory.Store, id, stock int64) {
	t.Helper()
	err := s.WithinTx(context.Background(), func(r repo.TxRepos) error {
		_, err := r.Products().Create(context.Background(), model.Product{
			ID: id, Name: "Pão de queijo", Price: decimal.RequireFromString("1.50"), Stock: stock,
		})
		return err
	})
	require.NoError(t, err)
}

func stockOf(t *testing.T, s *memory.Store, id int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.WithinTx(context.Background(), func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(context.Background(), id)
		n = p.Stock
		return err
	}))
	return n
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, 1, 5)

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().ApplyDeltaIfEnough(ctx, 1, -3)
		require.NoError(t, err)
		require.True(t, ok)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int64(5), stockOf(t, s, 1))
}

func TestSavepoint_RollsBackOnlyInner(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, 1, 5)

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Inventory().ApplyDeltaIfEnough(ctx, 1, -1)
		require.NoError(t, err)

		spErr := r.Savepoint(ctx, func(sp repo.TxRepos) error {
			_, err := sp.Inventory().ApplyDeltaIfEnough(ctx, 1, -2)
			require.NoError(t, err)
			return errBoom
		})
		assert.ErrorIs(t, spErr, errBoom)

		return r.Savepoint(ctx, func(sp repo.TxRepos) error {
			_, err := sp.Inventory().ApplyDeltaIfEnough(ctx, 1, -1)
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stockOf(t, s, 1))
}

func TestApplyDeltaIfEnough_NeverNegative(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, 1, 2)

	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().ApplyDeltaIfEnough(ctx, 1, -3)
		assert.False(t, ok)
		return err
	}))
	assert.Equal(t, int64(2), stockOf(t, s, 1))
}

func TestProductDelete_RestrictedByLineItems(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, 7, 5)

	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().Create(ctx, model.Order{CustomerName: "Ana", Status: model.OrderStatusPending})
		require.NoError(t, err)
		_, err = r.OrderLineItems().Create(ctx, model.OrderLineItem{OrderID: o.ID, ProductID: 7, Quantity: 1})
		return err
	}))

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Products().Delete(ctx, 7)
	})
	assert.ErrorIs(t, err, repo.ErrReferenced)
}

func TestOrderDelete_CascadesLineItems(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, 1, 5)

	var orderID int64
	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().Create(ctx, model.Order{CustomerName: "Ana", Status: model.OrderStatusPending})
		require.NoError(t, err)
		orderID = o.ID
		_, err = r.OrderLineItems().Create(ctx, model.OrderLineItem{OrderID: o.ID, ProductID: 1, Quantity: 2})
		return err
	}))

	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return err
		}
		n, err := r.OrderLineItems().CountByProductID(ctx, 1)
		assert.Zero(t, n)
		return err
	}))
}

func TestIdentifiers_PoolAndCounter(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	kind := model.IdentifierKindProduct

	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		ids := r.Identifiers()

		_, found, err := ids.LockSmallestExcluded(ctx, kind)
		require.NoError(t, err)
		assert.False(t, found)

		for _, want := range []int64{1, 2, 3} {
			got, err := ids.NextValue(ctx, kind)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		require.NoError(t, ids.InsertExcluded(ctx, kind, 3))
		require.NoError(t, ids.InsertExcluded(ctx, kind, 1))
		require.NoError(t, ids.InsertExcluded(ctx, kind, 1))

		list, err := ids.ListExcluded(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, list)

		smallest, found, err := ids.LockSmallestExcluded(ctx, kind)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(1), smallest)

		n, err := ids.ClearExcluded(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		next, err := ids.NextValue(ctx, kind)
		assert.Equal(t, int64(4), next)
		return err
	}))
}

func TestListWithLines_InnerJoinOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, 1, 10)

	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		empty, err := r.Orders().Create(ctx, model.Order{CustomerName: "Sem itens", Status: model.OrderStatusPending})
		require.NoError(t, err)
		require.NotZero(t, empty.ID)

		o, err := r.Orders().Create(ctx, model.Order{CustomerName: "Ana", Status: model.OrderStatusPending})
		require.NoError(t, err)
		_, err = r.OrderLineItems().Create(ctx, model.OrderLineItem{OrderID: o.ID, ProductID: 1, Quantity: 2})
		return err
	}))

	require.NoError(t, s.WithinTx(ctx, func(r repo.TxRepos) error {
		rows, err := r.Orders().ListWithLines(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ana", rows[0].CustomerName)
		assert.Equal(t, "Pão de queijo", rows[0].ProductName)
		assert.Equal(t, int64(2), rows[0].Quantity)
		return nil
	}))
}

func TestWithinTx_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.NewStore().WithinTx(ctx, func(r repo.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

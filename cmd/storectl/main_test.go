// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/order"
	"github.com/carterperez-dev/templates/storefront/internal/payment"
)

type fakeSweeper struct {
	result     payment.SweepResult
	sweepErr   error
	limit      int
	reconciled []string
	released   bool
}

func (f *fakeSweeper) ReconcileAny(_ context.Context, id string) (*order.Order, error) {
	f.reconciled = append(f.reconciled, id)
	if id == "missing" {
		return nil, core.ErrNotFound
	}
	return &order.Order{ID: id, Status: order.StatusPaid, PaymentStatus: order.PaymentPaid}, nil
}

func (f *fakeSweeper) Sweep(_ context.Context, limit int) (payment.SweepResult, error) {
	f.limit = limit
	return f.result, f.sweepErr
}

func useSweeper(t *testing.T, f *fakeSweeper) *int {
	t.Helper()

	opened := 0
	prev := openReconciler
	openReconciler = func(context.Context) (reconcileService, func(), error) {
		opened++
		return f, func() { f.released = true }, nil
	}
	t.Cleanup(func() { openReconciler = prev })
	return &opened
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	reconcileLimit = 100

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReconcileSweep(t *testing.T) {
	t.Run("clean sweep exits zero", func(t *testing.T) {
		f := &fakeSweeper{result: payment.SweepResult{Checked: 3}}
		useSweeper(t, f)

		out, err := execute(t, "reconcile", "--limit", "25")
		require.NoError(t, err)
		assert.Contains(t, out, "checked=3 failed=0")
		assert.Equal(t, 25, f.limit)
		assert.True(t, f.released)
	})

	t.Run("any failed order exits non-zero", func(t *testing.T) {
		f := &fakeSweeper{result: payment.SweepResult{Checked: 3, Failed: 1}}
		useSweeper(t, f)

		out, err := execute(t, "reconcile")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 orders failed")
		assert.Contains(t, out, "checked=3 failed=1")
		assert.Equal(t, 100, f.limit)
	})

	t.Run("listing failure exits non-zero", func(t *testing.T) {
		f := &fakeSweeper{sweepErr: errors.New("db down")}
		useSweeper(t, f)

		_, err := execute(t, "reconcile")
		assert.Error(t, err)
		assert.True(t, f.released)
	})

	t.Run("non-positive limit is rejected before opening storage", func(t *testing.T) {
		opened := useSweeper(t, &fakeSweeper{})

		_, err := execute(t, "reconcile", "--limit", "0")
		assert.Error(t, err)
		assert.Zero(t, *opened)
	})
}

func TestReconcileSingleOrder(t *testing.T) {
	f := &fakeSweeper{}
	useSweeper(t, f)

	out, err := execute(t, "reconcile", "o-1")
	require.NoError(t, err)
	assert.Contains(t, out, "o-1 status=paid payment_status=paid")

	_, err = execute(t, "reconcile", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, []string{"o-1", "missing"}, f.reconciled)
}

func TestArgumentValidation(t *testing.T) {
	opened := useSweeper(t, &fakeSweeper{})

	tests := [][]string{
		{"reconcile", "o-1", "o-2"},
		{"promote"},
		{"promote", "a@example.com", "b@example.com"},
		{"setting", "get"},
		{"setting", "set", "checkout.enabled"},
		{"prune-tokens", "extra"},
	}

	for _, args := range tests {
		_, err := execute(t, args...)
		assert.Error(t, err, "%v", args)
	}
	assert.Zero(t, *opened)
}

func TestGenKeys(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")

	out, err := execute(t, "genkeys", "--private", priv, "--public", pub)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	for _, path := range []string{priv, pub} {
		info, statErr := os.Stat(path)
		require.NoError(t, statErr)
		assert.NotZero(t, info.Size())
	}
}

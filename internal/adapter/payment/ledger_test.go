package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCreditsRecipient(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	require.NoError(t, ledger.Send(ctx, "0xa11ce", decimal.NewFromInt(100)))
	require.NoError(t, ledger.Send(ctx, "0xa11ce", decimal.NewFromInt(50)))

	assert.True(t, ledger.BalanceOf("0xa11ce").Equal(decimal.NewFromInt(150)))
	assert.True(t, ledger.BalanceOf("0xb0b").IsZero())
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	assert.Error(t, ledger.Send(ctx, "", decimal.NewFromInt(1)))
	assert.Error(t, ledger.Send(ctx, "0xa11ce", decimal.Zero))
	assert.Error(t, ledger.Send(ctx, "0xa11ce", decimal.NewFromInt(-5)))
}

func TestRejectedRecipientFailsObservably(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.Reject("0xa11ce")

	err := ledger.Send(ctx, "0xa11ce", decimal.NewFromInt(100))
	require.Error(t, err)
	assert.True(t, ledger.BalanceOf("0xa11ce").IsZero())
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateTotal(t *testing.T) {
	p := &Purchase{
		Lines: []PurchaseLine{
			{Quantity: 2, UnitPrice: 1500},
			{Quantity: 3, UnitPrice: 25},
		},
	}

	p.CalculateTotal()
	require.InDelta(t, 3075, p.TotalAmount, 0.001)
}

func TestCalculateTotal_NoLines(t *testing.T) {
	p := &Purchase{TotalAmount: 99}

	p.CalculateTotal()
	require.Zero(t, p.TotalAmount)
}

func TestResolveActionValid(t *testing.T) {
	require.True(t, ActionValidate.Valid())
	require.True(t, ActionRefuse.Valid())
	require.False(t, ResolveAction("").Valid())
	require.False(t, ResolveAction("archive").Valid())
}

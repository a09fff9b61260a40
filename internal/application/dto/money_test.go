package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
)

func TestMoney_JSONConDosDecimales(t *testing.T) {
	cases := map[string]string{
		"40":     `"40.00"`,
		"12.5":   `"12.50"`,
		"0":      `"0.00"`,
		"-10":    `"-10.00"`,
		"999.99": `"999.99"`,
	}
	for in, want := range cases {
		d, err := decimal.NewFromString(in)
		require.NoError(t, err)
		raw, err := json.Marshal(dto.NewMoney(d))
		require.NoError(t, err)
		assert.Equal(t, want, string(raw), in)
	}
}

func TestMoney_EnRespuestaDePago(t *testing.T) {
	resp := dto.PaymentResponse{
		Amount:      dto.NewMoney(decimal.NewFromInt(15)),
		TotalAmount: dto.NewMoney(decimal.NewFromInt(40)),
		PaidAmount:  dto.NewMoney(decimal.NewFromInt(15)),
		DebtAmount:  dto.NewMoney(decimal.NewFromInt(25)),
	}
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_amount":"40.00"`)
	assert.Contains(t, string(raw), `"debt_amount":"25.00"`)

	var back dto.PaymentResponse
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.DebtAmount.Equal(decimal.NewFromInt(25)))
}

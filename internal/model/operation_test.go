package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOperationType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ    OperationType
		rental bool
		label  string
	}{
		{TypeSale, false, "Sale"},
		{TypeTraditionalRental, true, "Traditional Rental"},
		{TypeTemporaryRental, true, "Temporary Rental"},
		{TypeCommercialRental, true, "Commercial Rental"},
		{TypeDevelopment, false, "Development"},
		{OperationType("barter"), false, "barter"},
		{OperationType(""), false, "Unspecified"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.rental, tt.typ.IsRental())
			assert.Equal(t, tt.label, tt.typ.Label())
		})
	}

	assert.Len(t, OperationTypes, 10)
	for _, typ := range OperationTypes {
		assert.True(t, typ.Valid(), typ)
	}
}

func TestOperationStatusIsTerminal(t *testing.T) {
	t.Parallel()
	assert.True(t, StatusClosed.IsTerminal())
	assert.True(t, StatusFallen.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestOperationHelpers(t *testing.T) {
	t.Parallel()

	t.Run("two advisors must be distinct", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Operation{AdvisorID: "a", AdditionalAdvisorID: "b"}.HasTwoAdvisors())
		assert.False(t, Operation{AdvisorID: "a", AdditionalAdvisorID: "a"}.HasTwoAdvisors())
		assert.False(t, Operation{AdvisorID: "a"}.HasTwoAdvisors())
	})

	t.Run("sides represented", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, Operation{}.SidesRepresented())
		assert.Equal(t, 1, Operation{SellerSide: true}.SidesRepresented())
		assert.Equal(t, 2, Operation{BuyerSide: true, SellerSide: true}.SidesRepresented())
	})

	t.Run("event date falls back to reservation", func(t *testing.T) {
		t.Parallel()
		res := NewDate(2024, time.March, 2)
		closing := NewDate(2024, time.April, 9)
		assert.Equal(t, res, Operation{ReservationDate: res}.EventDate())
		assert.Equal(t, closing, Operation{ReservationDate: res, ClosingDate: closing}.EventDate())
		assert.False(t, Operation{}.EventDate().Present())
	})

	t.Run("empty property type is unspecified", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, PropertyUnspecified, PropertyType("").OrUnspecified())
		assert.Equal(t, PropertyHouse, PropertyHouse.OrUnspecified())
	})
}

func TestOperationDecode(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		raw := `{"id":"op-1","deal_value":100000,"type":"sale","status":"closed",
			"closing_date":"2024-05-10T15:04:05Z","reservation_date":"2024-05-01",
			"capture_date":null,"brokerage_rate":3}`
		var op Operation
		require.NoError(t, json.Unmarshal([]byte(raw), &op))
		assert.Equal(t, NewDate(2024, time.May, 10), op.ClosingDate)
		assert.Equal(t, NewDate(2024, time.May, 1), op.ReservationDate)
		assert.False(t, op.CaptureDate.Present())
		assert.Equal(t, TypeSale, op.Type)
		assert.InDelta(t, 3.0, op.BrokerageRate, 1e-9)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		raw := "id: op-2\ntype: traditional_rental\nstatus: in_progress\nrental_expiration_date: 2025-01-31\ncapture_date: ~\n"
		var op Operation
		require.NoError(t, yaml.Unmarshal([]byte(raw), &op))
		assert.Equal(t, NewDate(2025, time.January, 31), op.RentalExpirationDate)
		assert.False(t, op.CaptureDate.Present())
		assert.Equal(t, StatusInProgress, op.Status)
	})

	t.Run("bad date is an error", func(t *testing.T) {
		t.Parallel()
		var op Operation
		err := json.Unmarshal([]byte(`{"closing_date":"10/05/2024"}`), &op)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse date")
	})
}

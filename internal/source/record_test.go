package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brokerage-metrics/internal/model"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"3", 3, false},
		{"2.5", 2.5, false},
		{"2,5", 2.5, false},
		{"$150000", 150000, false},
		{" -10 ", -10, false},
		{"1,000.50", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"-infinity", 0, true},
		{"1e400", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "true", "TRUE", "t", "yes", "Si"} {
		v, err := parseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"", "0", "false", "f", "no"} {
		v, err := parseBool(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := parseBool("maybe")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := model.NewDate(2024, time.January, 15)
	for _, s := range []string{
		"2024-01-15",
		"2024-01-15T10:30:00Z",
		"2024-01-15 10:30:00",
		"2024-01-15 10:30:00+00",
		"2024-01-15T10:30:00",
		"45306",
	} {
		got, err := parseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	got, err := parseDate("")
	require.NoError(t, err)
	assert.False(t, got.Present())

	_, err = parseDate("15/01/2024")
	assert.Error(t, err)
}

func TestRecordsFromRows(t *testing.T) {
	t.Parallel()

	recs := recordsFromRows(
		[]string{" ID ", "Deal_Value", ""},
		[][]string{
			{"op-1", "100", "ignored"},
			{"", " ", ""},
			{"op-2"},
		},
	)
	require.Len(t, recs, 2)
	assert.Equal(t, record{"id": "op-1", "deal_value": "100"}, recs[0])
	assert.Equal(t, record{"id": "op-2"}, recs[1])
}

func TestDecodeOperation(t *testing.T) {
	t.Parallel()

	op, err := decodeOperation(record{
		"id":                "op-1",
		"owner_id":          "u1",
		"deal_value":        "120000",
		"type":              "sale",
		"status":            "closed",
		"closing_date":      "2024-06-30",
		"buyer_side":        "1",
		"brokerage_rate":    "3",
		"advisor_share_pct": "50",
		"franchise_pct":     "",
		"listing_not_mine":  "false",
	}, "operations row 2")
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.ID)
	assert.InDelta(t, 120000, op.DealValue, 0.001)
	assert.Equal(t, model.StatusClosed, op.Status)
	assert.Equal(t, model.NewDate(2024, time.June, 30), op.ClosingDate)
	assert.True(t, op.BuyerSide)
	assert.False(t, op.SellerSide)
	assert.InDelta(t, 0, op.FranchisePct, 0.001)
}

func TestDecodeErrorsNameRowAndColumn(t *testing.T) {
	t.Parallel()

	_, err := decodeOperation(record{"id": "op-1", "deal_value": "lots"}, "operations row 7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operations row 7 column deal_value")

	_, err = decodeExpense(record{"date": "yesterday"}, "expenses row 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses row 3 column date")

	_, err = decodeUser(record{"annual_objective": "x"}, "users row 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users row 2 column annual_objective")
}

func TestDecodeUserOptionalObjective(t *testing.T) {
	t.Parallel()

	u, err := decodeUser(record{"id": "u1", "role": "agent"}, "users row 2")
	require.NoError(t, err)
	assert.Nil(t, u.AnnualObjective)

	u, err = decodeUser(record{"id": "u1", "annual_objective": "0"}, "users row 2")
	require.NoError(t, err)
	require.NotNil(t, u.AnnualObjective)
	assert.InDelta(t, 0, *u.AnnualObjective, 0.001)
}

func TestSnapshotFromRecordsReportsRow(t *testing.T) {
	t.Parallel()

	_, err := snapshotFromRecords(map[string][]record{
		"operations": {{"id": "ok"}, {"id": "bad", "buyer_side": "perhaps"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operations row 3 column buyer_side")
}

package source

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brokerage-metrics/internal/model"
)

// Column sets shared by every tabular source. Names match the JSON tags of
// the model types.
var (
	operationColumns = []string{
		"id", "owner_id", "deal_value", "type", "property_type", "status",
		"capture_date", "reservation_date", "closing_date", "rental_expiration_date",
		"buyer_side", "seller_side", "buyer_side_pct", "seller_side_pct",
		"exclusive", "non_exclusive", "brokerage_rate", "advisor_share_pct", "advisor_id",
		"additional_advisor_id", "additional_advisor_share_pct",
		"referral_id", "referral_pct", "shared_with", "shared_pct", "franchise_pct",
		"listing_not_mine", "expenses", "fallen_reason", "stored_gross_fee", "stored_net_fee",
	}
	expenseColumns = []string{
		"id", "date", "amount", "amount_secondary", "direction", "category", "recurring", "user_id",
	}
	userColumns = []string{
		"id", "name", "email", "role", "annual_objective", "currency", "team_leader_id",
	}
)

// record is one row keyed by column name.
type record map[string]string

// recordsFromRows turns a header row plus data rows into records. Header
// names are trimmed and lower-cased; blank rows are skipped.
func recordsFromRows(header []string, rows [][]string) []record {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := make([]record, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		rec := make(record, len(keys))
		for i, k := range keys {
			if i < len(row) && k != "" {
				rec[k] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// fieldReader parses typed values out of a record and keeps the first error.
type fieldReader struct {
	rec   record
	where string
	err   error
}

func newFieldReader(rec record, where string) *fieldReader {
	return &fieldReader{rec: rec, where: where}
}

func (r *fieldReader) fail(col string, err error) {
	if r.err == nil {
		r.err = eris.Wrapf(err, "source: %s column %s", r.where, col)
	}
}

func (r *fieldReader) str(col string) string {
	return strings.TrimSpace(r.rec[col])
}

func (r *fieldReader) float(col string) float64 {
	v, err := parseNumber(r.str(col))
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *fieldReader) optFloat(col string) *float64 {
	if r.str(col) == "" {
		return nil
	}
	v := r.float(col)
	return &v
}

func (r *fieldReader) boolean(col string) bool {
	v, err := parseBool(r.str(col))
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *fieldReader) date(col string) model.Date {
	v, err := parseDate(r.str(col))
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	// Accept a lone decimal comma, as exported by Spanish-locale sheets.
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("non-finite number %q", s)
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "f", "no", "n":
		return false, nil
	case "1", "true", "t", "yes", "y", "si", "sí":
		return true, nil
	}
	return false, eris.Errorf("invalid boolean %q", s)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseDate accepts ISO dates, RFC3339, SQL timestamps and Excel serial
// day numbers.
func parseDate(s string) (model.Date, error) {
	if s == "" {
		return model.Date{}, nil
	}
	if d, err := model.ParseDate(s); err == nil {
		return d, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return model.DateOf(xlsx.TimeFromExcelTime(serial, false)), nil
	}
	return model.Date{}, eris.Errorf("invalid date %q", s)
}

func decodeOperation(rec record, where string) (model.Operation, error) {
	r := newFieldReader(rec, where)
	op := model.Operation{
		ID:                        r.str("id"),
		OwnerID:                   r.str("owner_id"),
		DealValue:                 r.float("deal_value"),
		Type:                      model.OperationType(r.str("type")),
		PropertyType:              model.PropertyType(r.str("property_type")),
		Status:                    model.OperationStatus(r.str("status")),
		CaptureDate:               r.date("capture_date"),
		ReservationDate:           r.date("reservation_date"),
		ClosingDate:               r.date("closing_date"),
		RentalExpirationDate:      r.date("rental_expiration_date"),
		BuyerSide:                 r.boolean("buyer_side"),
		SellerSide:                r.boolean("seller_side"),
		BuyerSidePct:              r.float("buyer_side_pct"),
		SellerSidePct:             r.float("seller_side_pct"),
		Exclusive:                 r.boolean("exclusive"),
		NonExclusive:              r.boolean("non_exclusive"),
		BrokerageRate:             r.float("brokerage_rate"),
		AdvisorSharePct:           r.float("advisor_share_pct"),
		AdvisorID:                 r.str("advisor_id"),
		AdditionalAdvisorID:       r.str("additional_advisor_id"),
		AdditionalAdvisorSharePct: r.float("additional_advisor_share_pct"),
		ReferralID:                r.str("referral_id"),
		ReferralPct:               r.float("referral_pct"),
		SharedWith:                r.str("shared_with"),
		SharedPct:                 r.float("shared_pct"),
		FranchisePct:              r.float("franchise_pct"),
		ListingNotMine:            r.boolean("listing_not_mine"),
		Expenses:                  r.float("expenses"),
		FallenReason:              r.str("fallen_reason"),
		StoredGrossFee:            r.float("stored_gross_fee"),
		StoredNetFee:              r.float("stored_net_fee"),
	}
	return op, r.err
}

func decodeExpense(rec record, where string) (model.Expense, error) {
	r := newFieldReader(rec, where)
	e := model.Expense{
		ID:              r.str("id"),
		Date:            r.date("date"),
		Amount:          r.float("amount"),
		AmountSecondary: r.float("amount_secondary"),
		Direction:       model.ExpenseDirection(r.str("direction")),
		Category:        r.str("category"),
		Recurring:       r.boolean("recurring"),
		UserID:          r.str("user_id"),
	}
	return e, r.err
}

func decodeUser(rec record, where string) (model.UserData, error) {
	r := newFieldReader(rec, where)
	u := model.UserData{
		ID:              r.str("id"),
		Name:            r.str("name"),
		Email:           r.str("email"),
		Role:            model.Role(r.str("role")),
		AnnualObjective: r.optFloat("annual_objective"),
		Currency:        r.str("currency"),
		TeamLeaderID:    r.str("team_leader_id"),
	}
	return u, r.err
}

// tables describes the three record sets in load order.
var tables = []struct {
	name    string
	columns []string
}{
	{"operations", operationColumns},
	{"expenses", expenseColumns},
	{"users", userColumns},
}

// snapshotFromRecords decodes the record sets of each table into a Snapshot.
func snapshotFromRecords(byTable map[string][]record) (*Snapshot, error) {
	snap := &Snapshot{}
	for i, rec := range byTable["operations"] {
		op, err := decodeOperation(rec, rowRef("operations", i))
		if err != nil {
			return nil, err
		}
		snap.Operations = append(snap.Operations, op)
	}
	for i, rec := range byTable["expenses"] {
		e, err := decodeExpense(rec, rowRef("expenses", i))
		if err != nil {
			return nil, err
		}
		snap.Expenses = append(snap.Expenses, e)
	}
	for i, rec := range byTable["users"] {
		u, err := decodeUser(rec, rowRef("users", i))
		if err != nil {
			return nil, err
		}
		snap.Users = append(snap.Users, u)
	}
	return snap, nil
}

// rowRef names a data row, counting the header as row 1.
func rowRef(table string, i int) string {
	return table + " row " + strconv.Itoa(i+2)
}

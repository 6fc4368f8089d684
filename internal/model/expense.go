package model

// ExpenseDirection tells whether an expense record is money in or out.
type ExpenseDirection string

const (
	DirectionIncome  ExpenseDirection = "income"
	DirectionOutflow ExpenseDirection = "outflow"
)

// Expense is one personal or office expense entry.
type Expense struct {
	ID              string           `json:"id" yaml:"id"`
	Date            Date             `json:"date" yaml:"date"`
	Amount          float64          `json:"amount" yaml:"amount"`
	AmountSecondary float64          `json:"amount_secondary" yaml:"amount_secondary"`
	Direction       ExpenseDirection `json:"direction" yaml:"direction"`
	Category        string           `json:"category,omitempty" yaml:"category,omitempty"`
	Recurring       bool             `json:"recurring" yaml:"recurring"`
	UserID          string           `json:"user_id" yaml:"user_id"`
}

// IsOutflow reports whether the entry counts against profitability.
// Anything not explicitly income is treated as an outflow.
func (e Expense) IsOutflow() bool {
	return e.Direction != DirectionIncome
}

// AmountFor returns the amount in the currency the viewer reports in.
func (e Expense) AmountFor(u UserData) float64 {
	if u.UsesSecondaryCurrency() {
		return e.AmountSecondary
	}
	return e.Amount
}

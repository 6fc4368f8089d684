// Package source loads persisted operations, expenses and users into typed
// records. Every adapter is read-only and all string parsing happens here.
package source

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brokerage-metrics/internal/config"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// Snapshot is everything a dashboard run reads.
type Snapshot struct {
	Operations []model.Operation `json:"operations" yaml:"operations"`
	Expenses   []model.Expense   `json:"expenses" yaml:"expenses"`
	Users      []model.UserData  `json:"users" yaml:"users"`
}

// Source loads a Snapshot.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
	Close() error
}

// Open returns the Source for cfg.Driver.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	log := zap.L().With(zap.String("driver", cfg.Driver), zap.String("path", redact(cfg.Driver, cfg.Path)))
	log.Debug("source: opening")

	switch cfg.Driver {
	case "file", "":
		return NewFile(cfg.Path), nil
	case "csv":
		return NewCSVDir(cfg.Path), nil
	case "xlsx":
		return NewXLSX(cfg.Path), nil
	case "sqlite":
		s, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		p, err := NewPostgres(ctx, cfg.Path, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, eris.Errorf("source: unknown driver %q", cfg.Driver)
	}
}

// User returns the user with the given ID.
func (s *Snapshot) User(id string) (model.UserData, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.UserData{}, false
}

// Roster returns the leader followed by every user reporting to them, in
// snapshot order.
func (s *Snapshot) Roster(leader model.UserData) []model.UserData {
	roster := []model.UserData{leader}
	for _, u := range s.Users {
		if u.ID != leader.ID && u.TeamLeaderID == leader.ID {
			roster = append(roster, u)
		}
	}
	return roster
}

// OperationsFor returns the operations user may see. Agents see operations
// they own or advise on. Team leaders see those of their whole roster.
func (s *Snapshot) OperationsFor(user model.UserData) []model.Operation {
	ids := map[string]bool{user.ID: true}
	if user.IsTeamLeader() {
		for _, m := range s.Roster(user) {
			ids[m.ID] = true
		}
	}
	var out []model.Operation
	for _, op := range s.Operations {
		if ids[op.OwnerID] || ids[op.AdvisorID] || ids[op.AdditionalAdvisorID] {
			out = append(out, op)
		}
	}
	return out
}

// ExpensesFor returns the expenses recorded by userID.
func (s *Snapshot) ExpensesFor(userID string) []model.Expense {
	var out []model.Expense
	for _, e := range s.Expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// Operation returns the operation with the given ID.
func (s *Snapshot) Operation(id string) (model.Operation, bool) {
	for _, op := range s.Operations {
		if op.ID == id {
			return op, true
		}
	}
	return model.Operation{}, false
}

func logLoaded(driver string, snap *Snapshot) {
	zap.L().Info("source: loaded snapshot",
		zap.String("driver", driver),
		zap.Int("operations", len(snap.Operations)),
		zap.Int("expenses", len(snap.Expenses)),
		zap.Int("users", len(snap.Users)),
	)
}

// redact hides credentials in database DSNs before logging.
func redact(driver, path string) string {
	if driver == "postgres" {
		return "<dsn>"
	}
	return path
}

type numericField struct {
	col string
	v   float64
}

// checkFinite rejects NaN and infinite amounts. Tabular sources catch these
// while parsing; document formats such as YAML (.nan, .inf) decode them as is.
func (s *Snapshot) checkFinite() error {
	for i, op := range s.Operations {
		if err := finite(rowRef("operations", i), []numericField{
			{"deal_value", op.DealValue},
			{"buyer_side_pct", op.BuyerSidePct},
			{"seller_side_pct", op.SellerSidePct},
			{"brokerage_rate", op.BrokerageRate},
			{"advisor_share_pct", op.AdvisorSharePct},
			{"additional_advisor_share_pct", op.AdditionalAdvisorSharePct},
			{"referral_pct", op.ReferralPct},
			{"shared_pct", op.SharedPct},
			{"franchise_pct", op.FranchisePct},
			{"expenses", op.Expenses},
			{"stored_gross_fee", op.StoredGrossFee},
			{"stored_net_fee", op.StoredNetFee},
		}); err != nil {
			return err
		}
	}
	for i, e := range s.Expenses {
		if err := finite(rowRef("expenses", i), []numericField{
			{"amount", e.Amount},
			{"amount_secondary", e.AmountSecondary},
		}); err != nil {
			return err
		}
	}
	for i, u := range s.Users {
		if u.AnnualObjective == nil {
			continue
		}
		if err := finite(rowRef("users", i), []numericField{{"annual_objective", *u.AnnualObjective}}); err != nil {
			return err
		}
	}
	return nil
}

func finite(ref string, fields []numericField) error {
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return eris.Errorf("source: %s column %s: non-finite number %v", ref, f.col, f.v)
		}
	}
	return nil
}

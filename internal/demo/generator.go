// Package demo fills a database with sample transactions so the screens
// have something to show.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jask/cashflow/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
}

// Options controls the generated data. Days bounds how far back dates go.
type Options struct {
	Count int
	Days  int
	Now   time.Time
	Seed  uint64
}

var notes = map[string][]string{
	"Groceries":        {"Market", "Bakery", "Weekly shop"},
	"Restaurants":      {"Lunch", "Dinner out", "Sushi"},
	"Coffee":           {"Flat white", "Espresso"},
	"Fuel":             {"Petrol"},
	"Public Transport": {"Metro card", "Bus"},
	"Taxi":             {"Cab home"},
	"Rent":             {"Rent"},
	"Utilities":        {"Electricity", "Water"},
	"Internet":         {"Fibre"},
	"Pharmacy":         {"Pharmacy"},
	"Doctor":           {"Check-up"},
	"Movies":           {"Cinema"},
	"Sport":            {"Gym"},
	"Travel":           {"Train tickets", "Hotel"},
	"Salary":           {"Salary"},
	"Other":            {"Refund", "Gift"},
}

// Seed inserts opts.Count transactions spread over the sub-categories of
// every account. The same seed yields the same amounts and dates; IDs are
// always fresh.
func Seed(ctx context.Context, repos Repos, opts Options) (int, error) {
	if opts.Count <= 0 {
		return 0, nil
	}
	if opts.Days <= 0 {
		opts.Days = 60
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	cats, err := repos.Categories.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	var subs []repository.Category
	for _, c := range cats {
		if c.ParentID == nil {
			names[c.ID] = c.Name
			continue
		}
		if c.AccountID != nil {
			subs = append(subs, c)
		}
	}
	if len(subs) == 0 {
		return 0, fmt.Errorf("no categories to fill; run seed first")
	}

	inserted := 0
	for range opts.Count {
		c := subs[rng.IntN(len(subs))]
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   *c.AccountID,
			CategoryID:  &c.ID,
			Date:        opts.Now.Add(-time.Duration(rng.IntN(opts.Days*24*60)) * time.Minute).Truncate(time.Minute),
			AmountCents: int64(rng.IntN(9500) + 500),
			Kind:        repository.KindExpense,
			Pending:     rng.IntN(10) == 0,
			Method:      repository.MethodCash,
			Currency:    "USD",
			Note:        pick(rng, notes[c.Name], c.Name),
		}
		if rng.IntN(3) == 0 {
			tx.Method = repository.MethodCredit
		}
		if c.ParentID != nil && names[*c.ParentID] == "Income" {
			tx.Kind = repository.KindIncome
			tx.AmountCents *= 20
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return inserted, fmt.Errorf("insert demo transaction: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func pick(rng *rand.Rand, options []string, fallback string) string {
	if len(options) == 0 {
		return fallback
	}
	return options[rng.IntN(len(options))]
}

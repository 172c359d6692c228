package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/cashflow/internal/database/repository"
)

type defaultCategory struct {
	name     string
	color    string
	children []string
}

var defaultCategories = []defaultCategory{
	{"Food", "#E53013", []string{"Groceries", "Restaurants", "Coffee"}},
	{"Transport", "#394264", []string{"Fuel", "Public Transport", "Taxi"}},
	{"Home", "#33CC33", []string{"Rent", "Utilities", "Internet"}},
	{"Health", "#0099FF", []string{"Pharmacy", "Doctor"}},
	{"Leisure", "#FF3300", []string{"Movies", "Sport", "Travel"}},
	{"Income", "#252B44", []string{"Salary", "Other"}},
}

// DefaultAccountID is the ID of the account created by SeedDefaults.
var DefaultAccountID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("account:personal")).String()

// SeedDefaults ensures a baseline account and category tree exist for new
// databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	accounts := repository.NewAccountRepo(db)
	existing, err := accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if err := accounts.Upsert(ctx, repository.Account{ID: DefaultAccountID, Name: "Personal"}); err != nil {
		return err
	}

	cats := repository.NewCategoryRepo(db)
	accountID := DefaultAccountID
	for idx, def := range defaultCategories {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+def.name)).String()
		parent := repository.Category{ID: id, AccountID: &accountID, Name: def.name, Color: def.color, SortOrder: idx}
		if err := cats.Upsert(ctx, parent); err != nil {
			return err
		}
		for j, name := range def.children {
			childID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+def.name+">"+name)).String()
			child := repository.Category{ID: childID, AccountID: &accountID, ParentID: &id, Name: name, Color: def.color, SortOrder: j}
			if err := cats.Upsert(ctx, child); err != nil {
				return err
			}
		}
	}
	return nil
}

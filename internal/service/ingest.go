package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/cashflow/internal/database/repository"
)

// IngestService handles CSV imports.
type IngestService struct {
	Transactions *repository.TransactionRepo
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Suggest      *Suggester
	Currency     string

	accountCache  map[string]repository.Account
	categoryCache map[string]string
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportCSV reads rows of: date, amount, note, account[, category[, method]].
// Negative amounts are expenses and positive ones income. Rows identical to
// an earlier import are skipped.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader, tz *time.Location) (IngestResult, error) {
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if len(rec) < 4 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least 4 columns", line))
			continue
		}
		dateStr, amountStr, note, accountName := rec[0], rec[1], strings.TrimSpace(rec[2]), rec[3]
		date, err := parseLocalDate(dateStr, tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		cents, err := ParseAmount(amountStr)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		acct, err := s.accountForName(ctx, accountName)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d account: %w", line, err))
			continue
		}

		kind := repository.KindIncome
		if cents < 0 {
			kind = repository.KindExpense
			cents = -cents
		}
		method := repository.MethodCash
		if len(rec) > 5 && strings.EqualFold(strings.TrimSpace(rec[5]), repository.MethodCredit) {
			method = repository.MethodCredit
		}
		currency := s.Currency
		if currency == "" {
			currency = "USD"
		}

		t := repository.Transaction{
			ID:          sourceID(acct.ID, date.Format(time.DateOnly), fmt.Sprintf("%d", cents), kind, note),
			AccountID:   acct.ID,
			Date:        date,
			AmountCents: cents,
			Kind:        kind,
			Method:      method,
			Currency:    currency,
			Note:        note,
		}
		if len(rec) > 4 {
			t.CategoryID = s.categoryForName(ctx, rec[4])
		}
		if t.CategoryID == nil && s.Suggest != nil {
			if id, ok := s.Suggest.SuggestCategory(ctx, note); ok {
				t.CategoryID = &id
			}
		}
		if err := s.Transactions.Insert(ctx, t); err != nil {
			// skip duplicates on unique constraint
			if strings.Contains(err.Error(), "UNIQUE") {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// sourceID derives a stable ID from the row content so re-imports collide.
func sourceID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return uuid.NewSHA1(uuid.NameSpaceOID, sum[:]).String()
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, "2/01/2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func (s *IngestService) accountForName(ctx context.Context, name string) (repository.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Account{}, errors.New("account name required")
	}
	if s.accountCache == nil {
		s.accountCache = make(map[string]repository.Account)
	}
	if acct, ok := s.accountCache[name]; ok {
		return acct, nil
	}
	acct := repository.Account{ID: deterministicAccountID(name), Name: name}
	if existing, err := s.Accounts.Get(ctx, acct.ID); err == nil {
		acct = existing
	} else if !errors.Is(err, repository.ErrNotFound) {
		return repository.Account{}, err
	} else if err := s.Accounts.Upsert(ctx, acct); err != nil {
		return repository.Account{}, err
	}
	s.accountCache[name] = acct
	return acct, nil
}

// categoryForName matches a sub-category by name, case-insensitively.
func (s *IngestService) categoryForName(ctx context.Context, name string) *string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || s.Categories == nil {
		return nil
	}
	if s.categoryCache == nil {
		s.categoryCache = make(map[string]string)
		cats, err := s.Categories.List(ctx)
		if err != nil {
			return nil
		}
		for _, c := range cats {
			if c.ParentID != nil {
				s.categoryCache[strings.ToLower(c.Name)] = c.ID
			}
		}
	}
	if id, ok := s.categoryCache[name]; ok {
		return &id
	}
	return nil
}

func deterministicAccountID(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("account:"+key)).String()
}

package service

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/cashflow/internal/database/repository"
)

const suggestThreshold = 0.6

// Suggester proposes a sub-category for a new transaction from the notes of
// past categorised transactions.
type Suggester struct {
	Transactions *repository.TransactionRepo
	// History bounds how many recent transactions are compared.
	History int
}

// SuggestCategory returns the category of the most similar past note, if
// any is similar enough.
func (s *Suggester) SuggestCategory(ctx context.Context, note string) (string, bool) {
	note = normalizeNote(note)
	if note == "" {
		return "", false
	}
	limit := s.History
	if limit <= 0 {
		limit = 500
	}
	past, err := s.Transactions.List(ctx, repository.TransactionFilters{Limit: limit})
	if err != nil {
		return "", false
	}
	best, bestScore := "", 0.0
	for _, t := range past {
		if t.CategoryID == nil || t.Note == "" {
			continue
		}
		score := similarity(note, normalizeNote(t.Note))
		if score > bestScore {
			best, bestScore = *t.CategoryID, score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}

func normalizeNote(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

func similarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

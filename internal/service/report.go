package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/cashflow/internal/database/repository"
)

// ReportLine is one sub-category of a report.
type ReportLine struct {
	Category   repository.Category
	TotalCents int64
	Count      int
	Percent    decimal.Decimal
}

// ReportGroup is a top-level category with its sub-category lines. Percent
// is the group's share of all spending in the period.
type ReportGroup struct {
	Category   repository.Category
	TotalCents int64
	Percent    decimal.Decimal
	Lines      []ReportLine
}

// Report is spending per category for a period. Totals are magnitudes of
// expenses net of income within each category.
type Report struct {
	From, To   time.Time
	TotalCents int64
	Groups     []ReportGroup
}

// Reporter builds category reports.
type Reporter struct {
	Transactions *repository.TransactionRepo
	Categories   *repository.CategoryRepo
}

// Build aggregates [from, to) into groups ordered by total, largest first.
func (r *Reporter) Build(ctx context.Context, from, to time.Time) (Report, error) {
	totals, err := r.Transactions.SumByCategory(ctx, from, to)
	if err != nil {
		return Report{}, fmt.Errorf("sum by category: %w", err)
	}
	cats, err := r.Categories.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[string]repository.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	uncategorized := repository.Category{Name: "Uncategorized"}
	groups := map[string]*ReportGroup{}
	var order []string
	rep := Report{From: from, To: to}
	for _, t := range totals {
		spent := -t.TotalCents
		if spent <= 0 {
			continue
		}
		sub, ok := byID[t.CategoryID]
		if !ok {
			sub = uncategorized
		}
		parent := sub
		if sub.ParentID != nil {
			if p, ok := byID[*sub.ParentID]; ok {
				parent = p
			}
		}
		g, ok := groups[parent.ID]
		if !ok {
			g = &ReportGroup{Category: parent}
			groups[parent.ID] = g
			order = append(order, parent.ID)
		}
		g.TotalCents += spent
		g.Lines = append(g.Lines, ReportLine{Category: sub, TotalCents: spent, Count: t.Count})
		rep.TotalCents += spent
	}

	for _, id := range order {
		g := groups[id]
		g.Percent = Percent(g.TotalCents, rep.TotalCents)
		for i := range g.Lines {
			g.Lines[i].Percent = Percent(g.Lines[i].TotalCents, g.TotalCents)
		}
		sort.SliceStable(g.Lines, func(i, j int) bool { return g.Lines[i].TotalCents > g.Lines[j].TotalCents })
		rep.Groups = append(rep.Groups, *g)
	}
	sort.SliceStable(rep.Groups, func(i, j int) bool { return rep.Groups[i].TotalCents > rep.Groups[j].TotalCents })
	return rep, nil
}

// MonthRange returns the first instant of t's month and of the next one.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

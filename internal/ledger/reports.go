package ledger

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// RecentTransactionsLimit is how many transactions the dashboard lists.
const RecentTransactionsLimit = 5

var hundred = decimal.NewFromInt(100)

// DashboardStats summarizes approved cash flow and the review backlog.
func (s *Store) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	if err := s.wait(ctx); err != nil {
		return domain.DashboardStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dashboardStatsLocked(), nil
}

func (s *Store) dashboardStatsLocked() domain.DashboardStats {
	stats := domain.DashboardStats{
		TotalIncome:        decimal.Zero,
		TotalExpense:       decimal.Zero,
		RecentTransactions: []domain.Transaction{},
	}

	for _, tx := range s.transactions {
		switch tx.Status {
		case domain.TransactionStatusApproved:
			stats.TransactionCount++
			if tx.Type == domain.TransactionTypeIncome {
				stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
			} else {
				stats.TotalExpense = stats.TotalExpense.Add(tx.Amount)
			}
		case domain.TransactionStatusPending:
			stats.PendingReviewCount++
		}
	}
	stats.NetBalance = stats.TotalIncome.Sub(stats.TotalExpense)

	n := min(RecentTransactionsLimit, len(s.transactions))
	stats.RecentTransactions = append(stats.RecentTransactions, s.transactions[:n]...)

	return stats
}

// GenerateReport aggregates approved transactions matching filters. Zero
// start or end dates leave that side of the range open.
func (s *Store) GenerateReport(ctx context.Context, filters domain.ReportFilters) (domain.ReportData, error) {
	if filters.Type == "" {
		filters.Type = domain.ReportTypeAll
	}
	if !filters.Type.Valid() {
		return domain.ReportData{}, fmt.Errorf("GenerateReport: report type %q: %w", filters.Type, domain.ErrInvalidType)
	}
	if err := s.wait(ctx); err != nil {
		return domain.ReportData{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.ReportData{
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		CategoryBreakdown: []domain.CategoryBreakdown{},
		DailyData:         []domain.DailyDataPoint{},
	}

	byCategory := make(map[string]*domain.CategoryBreakdown)
	byDay := make(map[civil.Date]*domain.DailyDataPoint)

	for _, tx := range s.transactions {
		if !includeInReport(tx, filters) {
			continue
		}
		report.TransactionCount++

		day, ok := byDay[tx.Date]
		if !ok {
			day = &domain.DailyDataPoint{Date: tx.Date, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[tx.Date] = day
		}
		if tx.Type == domain.TransactionTypeIncome {
			report.TotalIncome = report.TotalIncome.Add(tx.Amount)
			day.Income = day.Income.Add(tx.Amount)
		} else {
			report.TotalExpense = report.TotalExpense.Add(tx.Amount)
			day.Expense = day.Expense.Add(tx.Amount)
		}

		cat, ok := byCategory[tx.Category]
		if !ok {
			cat = &domain.CategoryBreakdown{Category: tx.Category, Amount: decimal.Zero}
			byCategory[tx.Category] = cat
		}
		cat.Amount = cat.Amount.Add(tx.Amount)
		cat.Count++
	}
	report.NetAmount = report.TotalIncome.Sub(report.TotalExpense)

	total := report.TotalIncome.Add(report.TotalExpense)
	for _, cat := range byCategory {
		if total.IsPositive() {
			cat.Percentage = cat.Amount.Mul(hundred).Div(total).InexactFloat64()
		}
		report.CategoryBreakdown = append(report.CategoryBreakdown, *cat)
	}
	sort.Slice(report.CategoryBreakdown, func(i, j int) bool {
		a, b := report.CategoryBreakdown[i], report.CategoryBreakdown[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	for _, day := range byDay {
		report.DailyData = append(report.DailyData, *day)
	}
	sort.Slice(report.DailyData, func(i, j int) bool {
		return report.DailyData[i].Date.Before(report.DailyData[j].Date)
	})

	return report, nil
}

func includeInReport(tx domain.Transaction, f domain.ReportFilters) bool {
	if tx.Status != domain.TransactionStatusApproved {
		return false
	}
	if !f.StartDate.IsZero() && tx.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && tx.Date.After(f.EndDate) {
		return false
	}
	if !f.Type.Matches(tx.Type) {
		return false
	}
	return f.Category == "" || tx.Category == f.Category
}

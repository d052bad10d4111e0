package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ReportType selects which transaction directions a report covers.
type ReportType string

const (
	ReportTypeAll     ReportType = "all"
	ReportTypeExpense ReportType = "expense"
	ReportTypeIncome  ReportType = "income"
)

func (r ReportType) Valid() bool {
	switch r {
	case ReportTypeAll, ReportTypeExpense, ReportTypeIncome:
		return true
	}
	return false
}

// Matches reports whether a transaction of type t is included.
func (r ReportType) Matches(t TransactionType) bool {
	return r == ReportTypeAll || string(r) == string(t)
}

// ReportFilters bound a report. StartDate and EndDate are inclusive.
type ReportFilters struct {
	StartDate civil.Date `json:"startDate"`
	EndDate   civil.Date `json:"endDate"`
	Type      ReportType `json:"type"`
	Category  string     `json:"category,omitempty"`
}

type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Count      int             `json:"count"`
}

type DailyDataPoint struct {
	Date    civil.Date      `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type ReportData struct {
	TotalIncome       decimal.Decimal     `json:"totalIncome"`
	TotalExpense      decimal.Decimal     `json:"totalExpense"`
	NetAmount         decimal.Decimal     `json:"netAmount"`
	TransactionCount  int                 `json:"transactionCount"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	DailyData         []DailyDataPoint    `json:"dailyData"`
}

type DashboardStats struct {
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpense       decimal.Decimal `json:"totalExpense"`
	NetBalance         decimal.Decimal `json:"netBalance"`
	TransactionCount   int             `json:"transactionCount"`
	PendingReviewCount int             `json:"pendingReviewCount"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

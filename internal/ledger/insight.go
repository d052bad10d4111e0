package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

const (
	insightExcellent = "أداء ممتاز! أنت توفر أكثر من 20% من دخلك. استمر في هذا الأداء الرائع."
	insightGood      = "جيد! أنت توفر جزءاً من دخلك. حاول زيادة معدل الادخار إلى 20% لتحقيق أهدافك المالية."
	insightWarning   = "تنبيه: مصروفاتك تتجاوز إيراداتك. ننصح بمراجعة نفقاتك والبحث عن طرق لتقليل المصروفات غير الضرورية."
)

var healthySavingsRate = decimal.NewFromInt(20)

// SavingsRate is net balance as a percentage of income; zero without income.
func SavingsRate(stats domain.DashboardStats) decimal.Decimal {
	if !stats.TotalIncome.IsPositive() {
		return decimal.Zero
	}
	return stats.NetBalance.Mul(hundred).Div(stats.TotalIncome)
}

// Insight returns a one-line Arabic comment on the savings rate.
func Insight(stats domain.DashboardStats) string {
	rate := SavingsRate(stats)
	switch {
	case rate.GreaterThan(healthySavingsRate):
		return insightExcellent
	case rate.IsPositive():
		return insightGood
	default:
		return insightWarning
	}
}

package extraction

import (
	"context"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

const (
	ruleConfidence     = 0.92
	noAmountConfidence = 0.5
)

// amountPattern captures the first decimal number, optionally followed by a
// currency token.
var amountPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ريال|ر.س|SAR)?`)

// Eastern Arabic digits are folded to ASCII before matching amounts.
var digitFolder = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".",
)

// RuleExtractor derives a draft from keyword rules. It is deterministic apart
// from the clock used to date the draft.
type RuleExtractor struct {
	rules compiledRules
	now   func() time.Time
}

type RuleOption func(*RuleExtractor)

// WithClock overrides the clock used for the draft date.
func WithClock(now func() time.Time) RuleOption {
	return func(r *RuleExtractor) {
		r.now = now
	}
}

// NewRuleExtractor compiles rules into an extractor.
func NewRuleExtractor(rules Rules, opts ...RuleOption) *RuleExtractor {
	r := &RuleExtractor{
		rules: rules.compile(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract implements Extractor using only the input text.
func (r *RuleExtractor) Extract(_ context.Context, in Input) domain.ExtractedTransactionData {
	return r.Parse(in.Text)
}

// Parse builds a draft from free text.
func (r *RuleExtractor) Parse(text string) domain.ExtractedTransactionData {
	amount := parseAmount(text)

	hasExpense := matches(r.rules.expense, text)
	hasIncome := matches(r.rules.income, text)
	isExpense := hasExpense || (!hasIncome && amount.IsPositive())

	rules := r.rules.rules
	category := rules.DefaultCategory
	account := rules.DefaultIncomeAccount
	if isExpense {
		account = rules.DefaultExpenseAccount
	}
	for _, c := range r.rules.categories {
		if matches(c.match, text) {
			category = c.category
			account = c.account
			break
		}
	}

	txType := domain.TransactionTypeIncome
	if isExpense {
		txType = domain.TransactionTypeExpense
	}

	draft := domain.ExtractedTransactionData{
		Description: text,
		Amount:      amount,
		Date:        civil.DateOf(r.now()),
		Category:    category,
		Type:        txType,
		Confidence:  noAmountConfidence,
		Entries:     []domain.TransactionEntry{},
	}
	if amount.IsPositive() {
		draft.Confidence = ruleConfidence
		draft.Entries = balancedLines(isExpense, account, rules.CashAccount, amount)
	}
	return draft
}

// balancedLines returns the two-line double entry for a single movement.
func balancedLines(isExpense bool, account, cash string, amount decimal.Decimal) []domain.TransactionEntry {
	if isExpense {
		return []domain.TransactionEntry{
			{Account: account, Debit: amount, Credit: decimal.Zero},
			{Account: cash, Debit: decimal.Zero, Credit: amount},
		}
	}
	return []domain.TransactionEntry{
		{Account: cash, Debit: amount, Credit: decimal.Zero},
		{Account: account, Debit: decimal.Zero, Credit: amount},
	}
}

func parseAmount(text string) decimal.Decimal {
	m := amountPattern.FindStringSubmatch(digitFolder.Replace(text))
	if m == nil {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero
	}
	return amount
}

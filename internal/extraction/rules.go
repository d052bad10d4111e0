package extraction

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// CategoryRule maps any of its keywords to a category label and ledger account.
type CategoryRule struct {
	Keywords []string `yaml:"keywords"`
	Category string   `yaml:"category"`
	Account  string   `yaml:"account"`
}

// Rules is the keyword table driving the rule extractor. Category rules are
// evaluated in order and the first match wins.
type Rules struct {
	ExpenseKeywords       []string       `yaml:"expense_keywords"`
	IncomeKeywords        []string       `yaml:"income_keywords"`
	Categories            []CategoryRule `yaml:"categories"`
	DefaultCategory       string         `yaml:"default_category"`
	DefaultExpenseAccount string         `yaml:"default_expense_account"`
	DefaultIncomeAccount  string         `yaml:"default_income_account"`
	CashAccount           string         `yaml:"cash_account"`
}

// DefaultRules returns the built-in Arabic keyword table.
func DefaultRules() Rules {
	return Rules{
		ExpenseKeywords: []string{"دفعت", "اشتريت", "فاتورة", "مصروف", "شراء", "سداد", "دفع"},
		IncomeKeywords:  []string{"استلمت", "تحصيل", "إيراد", "مبيعات", "قبض", "تحويل"},
		Categories: []CategoryRule{
			{Keywords: []string{"كهرباء"}, Category: "خدمات", Account: "مصروفات الكهرباء"},
			{Keywords: []string{"ماء"}, Category: "خدمات", Account: "مصروفات الماء"},
			{Keywords: []string{"انترنت", "واي فاي", "wifi"}, Category: "اتصالات", Account: "مصروفات الإنترنت"},
			{Keywords: []string{"اتصالات", "STC", "موبايلي", "زين"}, Category: "اتصالات", Account: "مصروفات الاتصالات"},
			{Keywords: []string{"بنزين", "وقود", "مواصلات", "تأجير"}, Category: "مواصلات", Account: "مصروفات المواصلات"},
			{Keywords: []string{"مطعم", "أكل", "طعام", "غداء", "عشاء"}, Category: "مطاعم", Account: "مصروفات المطاعم"},
			{Keywords: []string{"تسوق", "ملابس", "مستلزمات"}, Category: "تسوق", Account: "مصروفات التسوق"},
			{Keywords: []string{"مبيعات", "بيع"}, Category: "مبيعات", Account: "إيرادات المبيعات"},
			{Keywords: []string{"خدمة", "استشارة"}, Category: "خدمات", Account: "إيرادات الخدمات"},
		},
		DefaultCategory:       domain.DefaultCategory,
		DefaultExpenseAccount: "مصروفات عامة",
		DefaultIncomeAccount:  "إيرادات عامة",
		CashAccount:           domain.CashAccount,
	}
}

// LoadRules reads a YAML rules file. Keys missing from the file keep their
// built-in values.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("LoadRules: read %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule table over the defaults.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("ParseRules: unmarshal: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("ParseRules: %w", err)
	}
	return rules, nil
}

// Validate rejects tables that could never produce a usable draft.
func (r Rules) Validate() error {
	if r.CashAccount == "" || r.DefaultExpenseAccount == "" || r.DefaultIncomeAccount == "" {
		return errors.New("cash and default accounts are required")
	}
	if r.DefaultCategory == "" {
		return errors.New("default category is required")
	}
	for i, c := range r.Categories {
		if len(c.Keywords) == 0 || c.Category == "" || c.Account == "" {
			return fmt.Errorf("category rule %d: keywords, category and account are required", i)
		}
	}
	return nil
}

type compiledRule struct {
	match    *regexp.Regexp
	category string
	account  string
}

type compiledRules struct {
	expense    *regexp.Regexp
	income     *regexp.Regexp
	categories []compiledRule
	rules      Rules
}

func (r Rules) compile() compiledRules {
	c := compiledRules{
		expense: keywordPattern(r.ExpenseKeywords),
		income:  keywordPattern(r.IncomeKeywords),
		rules:   r,
	}
	for _, rule := range r.Categories {
		c.categories = append(c.categories, compiledRule{
			match:    keywordPattern(rule.Keywords),
			category: rule.Category,
			account:  rule.Account,
		})
	}
	return c
}

// keywordPattern builds a case-insensitive alternation of literal keywords.
// An empty list yields nil, which never matches.
func keywordPattern(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile("(?i)(" + strings.Join(quoted, "|") + ")")
}

func matches(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}

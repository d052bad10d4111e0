package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// DefaultModelConfidence is used when a model reply omits its confidence.
const DefaultModelConfidence = 0.9

// AccountantPrompt instructs a model to act as an Arabic bookkeeper and reply
// with a single JSON draft.
const AccountantPrompt = `أنت محاسب ذكي متخصص في تحويل المعاملات المالية إلى قيود محاسبية باللغة العربية.

المطلوب:
1. تحليل نص المعاملة المالية أو المستند المرفق
2. استخراج المبلغ والتاريخ والوصف والتصنيف واسم المورد إن وجد
3. إنشاء قيد محاسبي مزدوج متوازن (مدين/دائن)

قواعد القيد:
- المصروفات: حساب المصروف مدين / النقدية دائن
- الإيرادات: النقدية مدين / حساب الإيراد دائن
- مجموع المدين يساوي مجموع الدائن دائماً

الحسابات الشائعة:
- مصروفات الكهرباء، مصروفات الماء، مصروفات الإنترنت، مصروفات الاتصالات
- مصروفات المواصلات، مصروفات المطاعم، مصروفات التسوق، مصروفات عامة
- إيرادات المبيعات، إيرادات الخدمات، إيرادات عامة

أعد كائن JSON واحداً فقط بدون أي نص إضافي أو تنسيق Markdown:
{
  "description": "وصف المعاملة",
  "amount": 250,
  "date": "YYYY-MM-DD",
  "vendor": "اسم المورد",
  "category": "تصنيف المعاملة",
  "type": "expense",
  "entries": [
    { "account": "اسم الحساب", "debit": 250, "credit": 0 },
    { "account": "النقدية", "debit": 0, "credit": 250 }
  ],
  "confidence": 0.95
}`

var errNoJSON = errors.New("no JSON object in model reply")

type modelReply struct {
	Description string                    `json:"description"`
	Amount      decimal.Decimal           `json:"amount"`
	Date        string                    `json:"date"`
	Vendor      string                    `json:"vendor"`
	Category    string                    `json:"category"`
	Type        string                    `json:"type"`
	Entries     []domain.TransactionEntry `json:"entries"`
	Confidence  float64                   `json:"confidence"`
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object.
func cleanModelJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", errNoJSON
	}
	return strings.TrimSpace(s[start : end+1]), nil
}

// parseModelReply converts a raw model reply into a draft, filling omitted
// fields from the input text and today's date.
func parseModelReply(raw string, in Input, now time.Time) (domain.ExtractedTransactionData, error) {
	clean, err := cleanModelJSON(raw)
	if err != nil {
		return domain.ExtractedTransactionData{}, fmt.Errorf("parseModelReply: %w", err)
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(clean), &reply); err != nil {
		return domain.ExtractedTransactionData{}, fmt.Errorf("parseModelReply: unmarshal: %w", err)
	}

	if reply.Amount.IsNegative() {
		return domain.ExtractedTransactionData{}, fmt.Errorf("parseModelReply: amount %s: %w", reply.Amount, domain.ErrNegativeAmount)
	}
	if len(reply.Entries) > 0 {
		entry := domain.AccountingEntry{
			Lines:  reply.Entries,
			Status: domain.EntryStatusPending,
			Source: domain.EntrySourceAI,
		}
		entry.TotalDebit, entry.TotalCredit = domain.Totals(reply.Entries)
		if err := entry.Validate(); err != nil {
			return domain.ExtractedTransactionData{}, fmt.Errorf("parseModelReply: entries: %w", err)
		}
	}

	draft := domain.ExtractedTransactionData{
		Description: reply.Description,
		Amount:      reply.Amount,
		Vendor:      reply.Vendor,
		Category:    reply.Category,
		Confidence:  reply.Confidence,
		Entries:     reply.Entries,
	}
	if draft.Description == "" {
		draft.Description = in.Text
	}
	if draft.Category == "" {
		draft.Category = domain.DefaultCategory
	}
	if draft.Confidence <= 0 || draft.Confidence > 1 {
		draft.Confidence = DefaultModelConfidence
	}
	if draft.Entries == nil {
		draft.Entries = []domain.TransactionEntry{}
	}

	draft.Date = civil.DateOf(now)
	if d, err := civil.ParseDate(reply.Date); err == nil {
		draft.Date = d
	}

	switch t := domain.TransactionType(reply.Type); {
	case len(draft.Entries) > 0:
		draft.Type = domain.TypeFromLines(draft.Entries)
	case t.Valid():
		draft.Type = t
	default:
		draft.Type = domain.TransactionTypeExpense
	}

	return draft, nil
}

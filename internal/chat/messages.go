package chat

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/webhook"
)

const (
	welcomeText = "مرحباً! 👋\n\nأنا مساعدك المحاسبي الذكي. يمكنك إرسال لي:\n\n" +
		"📝 **نصوص** مثل: \"دفعت 250 ريال فاتورة كهرباء\"\n" +
		"📸 **صور** (فواتير، إيصالات...)\n" +
		"📄 **ملفات** (PDF، اكسل، Word...)\n" +
		"📊 **تقارير** أو أي محتوى محاسبي آخر\n\n" +
		"سأعالج المحتوى وأرسله للنظام تلقائياً 📤"

	confirmedText     = "✅ **تم إرسال القيد للمراجعة!**\n\nيمكنك مراجعة القيد في صفحة \"القيود المحاسبية\" والموافقة عليه."
	confirmFailedText = "❌ حدث خطأ أثناء حفظ القيد. يرجى المحاولة مرة أخرى."
	dismissedText     = "تم إلغاء القيد. يمكنك إعادة إرسال المعاملة مع التعديلات المطلوبة."
	genericErrorText  = "❌ عذراً، حدث خطأ أثناء معالجة رسالتك. يرجى المحاولة مرة أخرى."

	reviewPrompt = "هل تريد مراجعة القيد المحاسبي قبل الحفظ؟"
	savedNote    = "تم حفظ المحتوى بنجاح!"
	failureTips  = "💡 **نصيحة:**\n• يمكنك إرسال نص أو صورة أو ملف\n• إذا كان فاتورة، تأكد من وضوح المبلغ\n• يمكنك أيضاً إرسال تقارير أو ملاحظات عامة"
)

func filePlaceholder(kind domain.AttachmentType, name, mimeType string) string {
	switch kind {
	case domain.AttachmentImage:
		return fmt.Sprintf("📸 صورة: %s\n\nملاحظة: تم رفع صورة، يرجى التأكد من وضوح البيانات المالية في الصورة.", name)
	case domain.AttachmentPDF:
		return fmt.Sprintf("📄 ملف PDF: %s\n\nملاحظة: تم رفع ملف PDF.", name)
	}
	if mimeType == "" {
		mimeType = "غير معروف"
	}
	return fmt.Sprintf("📎 ملف: %s\n\nنوع الملف: %s", name, mimeType)
}

func draftText(d domain.ExtractedTransactionData) string {
	var b strings.Builder
	b.WriteString("✅ **تم معالجة المحتوى بنجاح!**\n\n")
	fmt.Fprintf(&b, "📋 **الوصف:** %s\n", d.Description)
	if d.Amount.IsPositive() {
		fmt.Fprintf(&b, "💰 **المبلغ:** %s ريال\n", d.Amount.String())
	}
	fmt.Fprintf(&b, "📂 **التصنيف:** %s\n", d.Category)
	fmt.Fprintf(&b, "📅 **التاريخ:** %s\n", d.Date)
	fmt.Fprintf(&b, "🎯 **الدقة:** %d%%\n\n", int(math.Round(d.Confidence*100)))
	if d.Amount.IsPositive() {
		b.WriteString(reviewPrompt)
	} else {
		b.WriteString(savedNote)
	}
	return b.String()
}

func failureText(err error) string {
	var werr *webhook.Error
	if !errors.As(err, &werr) {
		return genericErrorText
	}
	return fmt.Sprintf("❌ حدث خطأ أثناء معالجة المحتوى:\n\n%s\n\n%s", werr.Message(), failureTips)
}

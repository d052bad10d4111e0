package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorKind classifies a failed webhook delivery.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindUnreachable ErrorKind = "unreachable"
	KindOther       ErrorKind = "other"
)

// Error is returned when the webhook round-trip did not complete.
type Error struct {
	Kind    ErrorKind
	Timeout time.Duration
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("webhook %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the Arabic explanation shown to the user.
func (e *Error) Message() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("⚠️ انتهت مهلة الاتصال (%d ثانية):\n\n"+
			"قد يكون السبب:\n1. اتصال إنترنت ضعيف جداً\n2. خادم الأتمتة غير متاح أو بطيء\n3. حجم الصورة كبير\n\n"+
			"حاول:\n• استخدم صورة أصغر أو ذات جودة أقل\n• تحقق من سرعة الإنترنت", int(e.Timeout.Seconds()))
	case KindUnreachable:
		return "⚠️ مشكلة في الاتصال:\n\nتأكد من أن:\n1. رابط الـ webhook صحيح\n2. الـ webhook مفعّل\n3. الخادم يقبل الطلبات"
	default:
		return fmt.Sprintf("حدث خطأ: %v", e.Err)
	}
}

// classify maps a transport error to an *Error. The request context decides
// timeouts; connection-level failures are unreachable.
func classify(ctx context.Context, timeout time.Duration, err error) *Error {
	kind := KindOther

	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		kind = KindUnreachable
	}

	return &Error{Kind: kind, Timeout: timeout, Err: err}
}

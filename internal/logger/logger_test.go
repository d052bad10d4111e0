package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", log.GetLevel())
	}
}

func TestNewWithLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    zerolog.Level
		wantErr bool
	}{
		{"empty defaults to info", "", zerolog.InfoLevel, false},
		{"debug", "debug", zerolog.DebugLevel, false},
		{"mixed case", " WARN ", zerolog.WarnLevel, false},
		{"unknown", "chatty", zerolog.Disabled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewWithLevel(tt.level, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("تم حفظ القيد")

	if !strings.Contains(buf.String(), "تم حفظ القيد") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"entry_id": "ae1",
		"amount":   "250",
	})
	log.Info().Msg("approved")

	out := buf.String()
	for _, want := range []string{`"entry_id":"ae1"`, `"amount":"250"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

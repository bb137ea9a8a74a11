package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := logAttributes([]any{"document_id", "sr_sport_event_1.xml", "rows", 2, 7, "events", "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("unexpected attribute count: got=%d want=%d", len(attrs), 4)
	}
	if attrs[0].Key != "document_id" || attrs[0].Value.AsString() != "sr_sport_event_1.xml" {
		t.Fatalf("unexpected document_id attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "rows" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected rows attribute: %+v", attrs[1])
	}
	if attrs[2].Key != "arg_2" || attrs[2].Value.AsString() != "events" {
		t.Fatalf("unexpected positional attribute: %+v", attrs[2])
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected dangling attribute: %+v", attrs[3])
	}
}

func TestLogValue(t *testing.T) {
	t.Parallel()

	if v := logValue(errors.New("boom")); v.AsString() != "boom" {
		t.Fatalf("unexpected error value: %s", v)
	}
	if v := logValue(1500 * time.Millisecond); v.AsString() != "1.5s" {
		t.Fatalf("unexpected duration value: %s", v)
	}
	if v := logValue(int64(12)); v.Kind() != otellog.KindInt64 || v.AsInt64() != 12 {
		t.Fatalf("unexpected int value: %s", v)
	}
	if v := logValue([]string{"csv", "sqlite"}); v.Kind() != otellog.KindString || v.AsString() != "[csv sqlite]" {
		t.Fatalf("unexpected slice value: %s", v)
	}
	if v := logValue(nil); v.Kind() != otellog.KindEmpty {
		t.Fatalf("expected empty value for nil, got %s", v.Kind())
	}
}

func TestToOTelSeverity(t *testing.T) {
	t.Parallel()

	cases := map[zapcore.Level]otellog.Severity{
		zapcore.DebugLevel: otellog.SeverityDebug,
		zapcore.InfoLevel:  otellog.SeverityInfo,
		zapcore.WarnLevel:  otellog.SeverityWarn,
		zapcore.ErrorLevel: otellog.SeverityError,
		zapcore.FatalLevel: otellog.SeverityFatal,
	}
	for level, want := range cases {
		if got := toOTelSeverity(level); got != want {
			t.Fatalf("unexpected severity for %s: got=%v want=%v", level, got, want)
		}
	}
}

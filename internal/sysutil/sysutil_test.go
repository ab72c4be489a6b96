package sysutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel}, // case + trim
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // empty -> info
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel}, // alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel}, // default
	}

	for _, tc := range cases {
		applied := SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want || applied != tc.want {
			t.Fatalf("SetLogLevel(%q) -> global %v, returned %v; want %v", tc.in, got, applied, tc.want)
		}
	}
}

func TestSetupLogger_JSONWithService(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	SetupLogger(&buf, false, "hvac-site-backend")
	log.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"service":"hvac-site-backend"`) || !strings.Contains(out, `"message":"hello"`) {
		t.Fatalf("unexpected log line: %s", out)
	}
	if !strings.Contains(out, `"time":`) {
		t.Fatalf("expected timestamp: %s", out)
	}
}

func TestSetupLogger_Pretty(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	l := SetupLogger(&buf, true, "svc")
	l.Info().Msg("hello")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("pretty output should not be JSON: %s", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("message missing: %s", out)
	}
}

func TestParseBool(t *testing.T) {
	trues := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	falses := []string{"0", "false", "no", "off", "n", " OFF "}
	unknown := []string{"", "  ", "random", "2"}

	for _, v := range trues {
		if got, ok := ParseBool(v); !got || !ok {
			t.Fatalf("ParseBool(%q) = %v,%v; want true,true", v, got, ok)
		}
	}
	for _, v := range falses {
		if got, ok := ParseBool(v); got || !ok {
			t.Fatalf("ParseBool(%q) = %v,%v; want false,true", v, got, ok)
		}
	}
	for _, v := range unknown {
		if _, ok := ParseBool(v); ok {
			t.Fatalf("ParseBool(%q) should not be recognized", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	// no args -> ""
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	// only empties -> ""
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// picks first non-empty (preserves original spacing)
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  hello  ")
	}
}

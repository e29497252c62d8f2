package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"mushaf/internal/logging"
)

func TestSetLogger(t *testing.T) {
	old := logging.Logger()
	defer logging.SetLogger(old)

	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logging.Logger().Debug("page turned", slog.Int("page", 4))

	if !strings.Contains(buf.String(), "page turned") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestSetLogger_Nil(t *testing.T) {
	old := logging.Logger()
	defer logging.SetLogger(old)

	logging.SetLogger(nil)
	if logging.Logger().Handler() != slog.DiscardHandler {
		t.Error("expected discard handler after SetLogger(nil)")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

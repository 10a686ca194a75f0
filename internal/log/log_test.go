package log

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":      logrus.InfoLevel,
		"debug": logrus.DebugLevel,
		"WARN":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"noise": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	defer logger.SetLevel(logrus.InfoLevel)

	SetLevel("debug")
	if GetLogger().GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", GetLogger().GetLevel())
	}
}

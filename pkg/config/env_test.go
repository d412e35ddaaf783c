package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("FOO", "")
	if got := GetEnv("FOO", "bar"); got != "bar" {
		t.Fatalf("expected bar, got %s", got)
	}
	t.Setenv("FOO", "baz")
	if got := GetEnv("FOO", "bar"); got != "baz" {
		t.Fatalf("expected baz, got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("NUM", "")
	if got := GetEnvInt("NUM", 42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("NUM", "100")
	if got := GetEnvInt("NUM", 42); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	t.Setenv("NUM", "notint")
	if got := GetEnvInt("NUM", 7); got != 7 {
		t.Fatalf("expected 7 on parse error, got %d", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("NORM", "")
	if got := GetEnvFloat("NORM", 1.5); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	t.Setenv("NORM", "2000000")
	if got := GetEnvFloat("NORM", 1.5); got != 2000000 {
		t.Fatalf("expected 2000000, got %v", got)
	}
	t.Setenv("NORM", "notafloat")
	if got := GetEnvFloat("NORM", 0.25); got != 0.25 {
		t.Fatalf("expected 0.25 on parse error, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "")
	if got := GetEnvBool("FLAG", true); got != true {
		t.Fatalf("expected true default, got %v", got)
	}
	t.Setenv("FLAG", "false")
	if got := GetEnvBool("FLAG", true); got != false {
		t.Fatalf("expected false, got %v", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("WINDOW", "")
	if got := GetEnvDuration("WINDOW", time.Hour); got != time.Hour {
		t.Fatalf("expected 1h default, got %v", got)
	}
	t.Setenv("WINDOW", "30m")
	if got := GetEnvDuration("WINDOW", time.Hour); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	t.Setenv("WINDOW", "bogus")
	if got := GetEnvDuration("WINDOW", 72*time.Hour); got != 72*time.Hour {
		t.Fatalf("expected 72h on parse error, got %v", got)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("STOPLIST", "")
	if got := GetEnvList("STOPLIST", []string{"btc"}); len(got) != 1 || got[0] != "btc" {
		t.Fatalf("expected default list, got %v", got)
	}
	t.Setenv("STOPLIST", "btc, eth ,,sol")
	got := GetEnvList("STOPLIST", nil)
	if len(got) != 3 || got[0] != "btc" || got[1] != "eth" || got[2] != "sol" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if GetLogLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level")
	}
	t.Setenv("LOG_LEVEL", "warn")
	if GetLogLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level")
	}
	t.Setenv("LOG_LEVEL", "error")
	if GetLogLevel() != logrus.ErrorLevel {
		t.Fatalf("expected error level")
	}
	t.Setenv("LOG_LEVEL", "")
	if GetLogLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level default")
	}
}

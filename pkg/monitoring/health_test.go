package monitoring

import (
	"context"
	"testing"
)

type pingableClient struct{}

func (p *pingableClient) Ping(context.Context) error { return nil }

func TestHealthChecker_Basic(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	status := hc.CheckHealth()
	if status.Status != StatusHealthy {
		t.Fatalf("expected healthy")
	}
}

func TestHealthChecker_DegradedWins(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	hc.AddCheck("slow", func() CheckResult { return CheckResult{Status: StatusDegraded} })
	if got := hc.CheckHealth().Status; got != StatusDegraded {
		t.Fatalf("expected degraded, got %q", got)
	}
}

func TestHealthChecker_UnhealthyWins(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	hc.AddCheck("down", func() CheckResult { return CheckResult{Status: StatusUnhealthy} })
	if got := hc.CheckHealth().Status; got != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %q", got)
	}
}

func TestClickHouseHealthCheck_NilDB(t *testing.T) {
	res := ClickHouseHealthCheck(nil)()
	if res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy for nil db, got %q", res.Status)
	}
	if res.Message != "ClickHouse connection is nil" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestClickHouseNativeHealthCheck(t *testing.T) {
	res := ClickHouseNativeHealthCheck(&pingableClient{})()
	if res.Status != StatusHealthy {
		t.Fatalf("expected healthy")
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	res := ConfigurationHealthCheck(map[string]string{"A": "x", "B": ""})()
	if res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy when config missing")
	}
	res = ConfigurationHealthCheck(map[string]string{"A": "x"})()
	if res.Status != StatusHealthy {
		t.Fatalf("expected healthy when config present")
	}
}

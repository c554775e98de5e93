package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequest(t *testing.T) {
	RequestsTotal.Reset()
	RequestDuration.Reset()

	RecordRequest(ModeGateway, "vendor.model.v1", "ok", 1.5)
	RecordRequest(ModeGateway, "vendor.model.v1", "ok", 0.5)

	count := testutil.ToFloat64(RequestsTotal.WithLabelValues(ModeGateway, "vendor.model.v1", "ok"))
	if count != 2 {
		t.Errorf("RequestsTotal = %v, want 2", count)
	}

	if n := testutil.CollectAndCount(RequestDuration); n != 1 {
		t.Errorf("RequestDuration series = %d, want 1", n)
	}
}

func TestRecordTokens(t *testing.T) {
	TokensTotal.Reset()

	RecordTokens(ModeDirect, "vendor.model.v1", 100, 50)

	inputCount := testutil.ToFloat64(TokensTotal.WithLabelValues(ModeDirect, "vendor.model.v1", "input"))
	if inputCount != 100 {
		t.Errorf("input tokens = %v, want 100", inputCount)
	}

	outputCount := testutil.ToFloat64(TokensTotal.WithLabelValues(ModeDirect, "vendor.model.v1", "output"))
	if outputCount != 50 {
		t.Errorf("output tokens = %v, want 50", outputCount)
	}
}

func TestRecordError(t *testing.T) {
	ErrorsTotal.Reset()

	RecordError(ModeGateway, "rate_limit")
	RecordError(ModeGateway, "rate_limit")
	RecordError(ModeGateway, "network")

	tests := []struct {
		kind string
		want float64
	}{
		{"rate_limit", 2},
		{"network", 1},
		{"authentication", 0},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got := testutil.ToFloat64(ErrorsTotal.WithLabelValues(ModeGateway, tt.kind))
			if got != tt.want {
				t.Errorf("ErrorsTotal[%s] = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestRecordCost(t *testing.T) {
	CostTotal.Reset()

	RecordCost(ModeGateway, "vendor.model.v1", 0.25)
	RecordCost(ModeGateway, "vendor.model.v1", 0.5)

	got := testutil.ToFloat64(CostTotal.WithLabelValues(ModeGateway, "vendor.model.v1"))
	if got != 0.75 {
		t.Errorf("CostTotal = %v, want 0.75", got)
	}
}

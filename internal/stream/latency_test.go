package stream

import (
	"testing"

	"main/internal/model/enum"
)

func TestQualityOf(t *testing.T) {
	testCases := []struct {
		latencyMs int64
		expected  enum.SignalQuality
	}{
		{-1, 0},
		{0, enum.SignalStrong},
		{150, enum.SignalStrong},
		{151, enum.SignalModerate},
		{400, enum.SignalModerate},
		{401, enum.SignalWeak},
		{5000, enum.SignalWeak},
	}

	for _, tc := range testCases {
		if got := QualityOf(tc.latencyMs); got != tc.expected {
			t.Fatalf("quality of %dms = %v, want %v", tc.latencyMs, got, tc.expected)
		}
	}
}

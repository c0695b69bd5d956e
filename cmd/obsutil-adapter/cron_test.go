package main

import "testing"

func TestCheckCronSchedule(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"descriptor", "@every 1h", true},
		{"standard", "0 2 * * *", true},
		{"with seconds", "30 */5 * * * *", true},
		{"never", "0 0 30 2 *", false},
		{"garbage", "often", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if ok := checkCronSchedule(test.expression); ok != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, ok)
			}
		})
	}
}

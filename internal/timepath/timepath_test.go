package timepath

import (
	"testing"
	"time"
)

func TestRemoteSubPath(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected string
	}{
		{
			"padded",
			time.Date(2024, time.March, 7, 23, 59, 0, 0, time.Local),
			"202403/07",
		},
		{
			"two digits",
			time.Date(2024, time.December, 24, 0, 0, 0, 0, time.Local),
			"202412/24",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := RemoteSubPath(test.now); result != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestUploadCutoff(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		interval int
		expected string
	}{
		{
			"thirty minutes",
			time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC),
			30,
			"20240307093000",
		},
		{
			"zero",
			time.Date(2024, time.March, 7, 10, 0, 5, 0, time.UTC),
			0,
			"20240307100005",
		},
		{
			"day boundary",
			time.Date(2024, time.March, 1, 0, 10, 0, 0, time.UTC),
			20,
			"20240229235000",
		},
		{
			"converted to utc",
			time.Date(2024, time.March, 7, 12, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60)),
			30,
			"20240307093000",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := UploadCutoff(test.now, test.interval); result != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, result)
			}
		})
	}
}

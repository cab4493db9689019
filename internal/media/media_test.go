package media

import "testing"

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     int
	}{
		{"short clip", 10, 2},
		{"just under boundary", 14.9, 2},
		{"boundary fifteen", 15, 3},
		{"mid-length", 45, 3},
		{"boundary sixty", 60, 3},
		{"long form", 61, 5},
		{"several minutes", 300, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalFor(tt.duration); got != tt.want {
				t.Errorf("IntervalFor(%v) = %d, want %d", tt.duration, got, tt.want)
			}
		})
	}
}

func TestKeyframeCount(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		interval int
		want     int
	}{
		{"thirty seconds at three", 30, 3, 11},
		{"forty-five seconds at three", 45, 3, 16},
		{"ten seconds at two", 10, 2, 6},
		{"exact single frame", 1, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyframeCount(tt.duration, tt.interval); got != tt.want {
				t.Errorf("KeyframeCount(%v, %d) = %d, want %d", tt.duration, tt.interval, got, tt.want)
			}
		})
	}
}

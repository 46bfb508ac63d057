package format

import "testing"

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1 KB"},
		{1500, "1.5 KB"},
		{56_000_000, "56 MB"},
		{805_306_368, "805 MB"},
		{2_000_000_000, "2 GB"},
	}

	for _, tt := range tests {
		if got := HumanBytes(tt.in); got != tt.want {
			t.Errorf("HumanBytes(%d) = %q, erwartet %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanBytes2(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{768 << 20, "768.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}

	for _, tt := range tests {
		if got := HumanBytes2(tt.in); got != tt.want {
			t.Errorf("HumanBytes2(%d) = %q, erwartet %q", tt.in, got, tt.want)
		}
	}
}

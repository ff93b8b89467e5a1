package bytesize

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"alnum", "abcXYZ019", 9},
		{"ascii punctuation", "a=b&c", 5},
		{"latin1", "é", 3},
		{"mixed", "café au lait", 14},
		{"cjk", "日本語", 9},
		{"emoji", "\U0001F600", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.in); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestConservative_WideCost(t *testing.T) {
	est := New(4)
	if got := est.Estimate("aé"); got != 5 {
		t.Errorf("Estimate = %d, want 5", got)
	}
	if got := est.RuneCost('é'); got != 4 {
		t.Errorf("RuneCost = %d, want 4", got)
	}
	if got := est.RuneCost('a'); got != 1 {
		t.Errorf("RuneCost = %d, want 1", got)
	}
}

func TestNew_FallsBackToDefault(t *testing.T) {
	if got := New(0).WideCost; got != DefaultWideCost {
		t.Errorf("WideCost = %d, want %d", got, DefaultWideCost)
	}
	var zero Conservative
	if got := zero.Estimate("é"); got != DefaultWideCost {
		t.Errorf("zero-value Estimate = %d, want %d", got, DefaultWideCost)
	}
}

func TestEstimate_UpperBoundForASCIIAndTwoByteRunes(t *testing.T) {
	for _, s := range []string{"hello", "naïve", "ñandú", "x=y&z"} {
		if Estimate(s) < len(s) {
			t.Errorf("Estimate(%q) = %d below UTF-8 length %d", s, Estimate(s), len(s))
		}
	}
}

func TestFunc(t *testing.T) {
	f := Func(func(s string) int { return 2 * len(s) })
	if got := f.Estimate("abc"); got != 6 {
		t.Errorf("Func.Estimate = %d, want 6", got)
	}
}

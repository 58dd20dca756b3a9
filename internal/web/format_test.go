package web

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m 0s"},
		{125, "2m 5s"},
		{3600, "1h 0m 0s"},
		{3723, "1h 2m 3s"},
		{-5, "0s"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.seconds); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestParseTimeToMs(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"00:30:00", 30 * 60 * 1000},
		{"01:00:00", 3600 * 1000},
		{"00:00:01", 1000},
		{"45:30", (45*60 + 30) * 1000},
	}
	for _, c := range cases {
		got, err := ParseTimeToMs(c.in)
		if err != nil {
			t.Errorf("ParseTimeToMs(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTimeToMs(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseTimeToMsRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "90", "1:2:3:4", "aa:bb:cc", "00:00:00", "-1:00:00"} {
		if _, err := ParseTimeToMs(in); err == nil {
			t.Errorf("ParseTimeToMs(%q) succeeded, want error", in)
		}
	}
}

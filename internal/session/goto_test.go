package session

import "testing"

func TestResolveGoto(t *testing.T) {
	tests := []struct {
		text   string
		cursor int
		want   int
		ok     bool
	}{
		{"50", 3, 50, true},
		{"-5", 3, -2, false},
		{"-3", 3, 0, true},
		{"+10", 3, 13, true},
		{"+97", 3, 100, false},
		{"99", 0, 99, true},
		{"100", 0, 100, false},
		{"0x20", 0, 32, true},
		{"+0x10", 4, 20, true},
		{"junk", 42, 0, true},
		{"+junk", 42, 42, true},
		{"", 7, 0, true},
		{" 12 ", 0, 12, true},
		{"12abc", 0, 12, true},
		{"0x1fz", 0, 31, true},
		{"+5k", 10, 15, true},
		{"0xg", 9, 0, true},
	}
	for _, tt := range tests {
		got, ok := ResolveGoto(tt.text, tt.cursor, 100)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResolveGoto(%q, %d) = %d, %v; want %d, %v", tt.text, tt.cursor, got, ok, tt.want, tt.ok)
		}
	}
}

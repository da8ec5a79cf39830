package manual

import "testing"

func TestCleanGameName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Catan_Rules.pdf", "Catan"},
		{"settlers_of_catan_manual.pdf", "Settlers Of Catan"},
		{"Ticket_to_Ride.pdf", "Ticket To Ride"},
		{"power-grid-rulebook.pdf", "Power Grid"},
		{"7_Wonders.pdf", "7 Wonders"},
		{"Risk.pdf", "Risk"},
		{"UNO_rule.PDF", "Uno"},
	}
	for _, tc := range cases {
		if got := CleanGameName(tc.in); got != tc.want {
			t.Errorf("CleanGameName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"catan", "Catan"},
		{"ticket TO ride", "Ticket To Ride"},
		{"  spaced   out  ", "Spaced Out"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := TitleCase(tc.in); got != tc.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

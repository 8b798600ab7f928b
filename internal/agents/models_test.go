package agents

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Sales Agent":       "sales-agent",
		"  Support 24/7  ":  "support-24-7",
		"Déjà Vu":           "déjà-vu",
		"---":               "",
		"Outbound!!Caller":  "outbound-caller",
		"already-slugified": "already-slugified",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

package design

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Submit Button", "submit_button"},
		{"Card / Large", "card_large"},
		{"  nav--bar ", "nav_bar"},
		{"1st item", "n_1st_item"},
		{"Ümlaut Icon", "mlaut_icon"},
		{"***", "node"},
		{"", "node"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTierAndConfidenceText(t *testing.T) {
	for _, tier := range Tiers {
		got, err := ParseTier(tier.String())
		if err != nil || got != tier {
			t.Errorf("ParseTier(%q) = %v, %v", tier.String(), got, err)
		}
	}
	if _, err := ParseTier("galaxy"); err == nil {
		t.Error("ParseTier should reject unknown names")
	}
	if c, err := ParseConfidence("very_high"); err != nil || c != ConfidenceVeryHigh {
		t.Errorf("ParseConfidence(very_high) = %v, %v", c, err)
	}
	if r, err := ParseRole(" \"Button\". "); err != nil || r != RoleButton {
		t.Errorf("ParseRole = %v, %v", r, err)
	}
	if _, err := ParseRole("the answer is button"); err == nil {
		t.Error("ParseRole should reject free text")
	}
}

package court

import "testing"

func TestParseFooter(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		kind   FooterKind
		number string
	}{
		{"in session", "SCA/1/2024", FooterInSession, "SCA/1/2024"},
		{"sitting over mixed case", "  court SITTING over  ", FooterSittingOver, ""},
		{"recess", "SCA/2/2024 (RECESS)", FooterRecess, "SCA/2/2024"},
		{"dash only", "-", FooterEmpty, ""},
		{"empty", "", FooterEmpty, ""},
		{"collapsed whitespace", "SCA/3/2024    extra   text", FooterInSession, "SCA/3/2024 extra text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseFooter(tc.raw)
			if got.Kind != tc.kind {
				t.Errorf("Kind: got %v, want %v", got.Kind, tc.kind)
			}
			if got.CaseNumber != tc.number {
				t.Errorf("CaseNumber: got %q, want %q", got.CaseNumber, tc.number)
			}
		})
	}
}

func TestFooterStatusAndType(t *testing.T) {
	f := ParseFooter("SCA/1/2024")
	if f.Status() != InSession {
		t.Errorf("Status: got %v, want IN_SESSION", f.Status())
	}
	if f.Type() != TypeActive {
		t.Errorf("Type: got %v, want active", f.Type())
	}

	empty := ParseFooter("")
	if empty.Status() != "" || empty.Type() != "" {
		t.Errorf("empty footer should have empty status/type, got %q/%q", empty.Status(), empty.Type())
	}
}

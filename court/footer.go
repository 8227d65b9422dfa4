package court

import "strings"

// Footer is the tagged variant derived from a raw `caseinfo` string. The
// source board packs case number, status, and free text into one loosely
// shaped field; Footer replaces that dynamic field-bag with an explicit
// sum type so callers can switch over Kind instead of re-parsing strings
// (spec §9's "dynamic field-bag becomes tagged variant" redesign).
type Footer struct {
	Kind       FooterKind
	CaseNumber string // set for InSession and Recess
}

// FooterKind enumerates the shapes a caseinfo string can take.
type FooterKind int

const (
	FooterEmpty FooterKind = iota
	FooterInSession
	FooterRecess
	FooterSittingOver
)

// ParseFooter derives a Footer from a raw `caseinfo` string, after
// collapsing internal whitespace and matching case-insensitively, per
// spec §4.B and the Open Question in §9 about mixed-case/whitespace
// upstream markup.
func ParseFooter(raw string) Footer {
	collapsed := collapseWhitespace(raw)
	upper := strings.ToUpper(collapsed)

	switch {
	case strings.Contains(upper, "COURT SITTING OVER"):
		return Footer{Kind: FooterSittingOver}
	case strings.Contains(collapsed, "(RECESS)"):
		num := strings.TrimSpace(strings.ReplaceAll(collapsed, "(RECESS)", ""))
		return Footer{Kind: FooterRecess, CaseNumber: num}
	case collapsed != "" && collapsed != "-":
		return Footer{Kind: FooterInSession, CaseNumber: collapsed}
	default:
		return Footer{Kind: FooterEmpty}
	}
}

// Status returns the CaseStatus implied by this footer, or "" for FooterEmpty.
func (f Footer) Status() CaseStatus {
	switch f.Kind {
	case FooterInSession:
		return InSession
	case FooterRecess:
		return Recess
	case FooterSittingOver:
		return SittingOver
	default:
		return ""
	}
}

// Type returns the lowercase CaseType implied by this footer, or "" for FooterEmpty.
func (f Footer) Type() CaseType {
	switch f.Kind {
	case FooterInSession:
		return TypeActive
	case FooterRecess:
		return TypeRecess
	case FooterSittingOver:
		return TypeSittingOver
	default:
		return ""
	}
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

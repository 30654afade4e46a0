package audit

// Trust-signal derivation from a token's mint and freeze authority fields.
// An authority counts as revoked when the backend reports it as empty or the
// literal string "null".

// Level is the badge severity.
type Level int

const (
	// Safe - both authorities revoked.
	Safe Level = iota
	// Caution - exactly one authority revoked.
	Caution
	// Risk - both authorities still held.
	Risk
)

// AuthorityRevoked reports whether an authority value means "nobody holds
// this authority".
func AuthorityRevoked(authority string) bool {
	return authority == "" || authority == "null"
}

// Assess derives the badge level from the two authorities.
func Assess(mintAuthority, freezeAuthority string) Level {
	mintRevoked := AuthorityRevoked(mintAuthority)
	freezeRevoked := AuthorityRevoked(freezeAuthority)

	switch {
	case mintRevoked && freezeRevoked:
		return Safe
	case mintRevoked || freezeRevoked:
		return Caution
	default:
		return Risk
	}
}

// Color returns the badge color as a hex string.
func (l Level) Color() string {
	switch l {
	case Safe:
		return "#22c55e"
	case Caution:
		return "#eab308"
	default:
		return "#ef4444"
	}
}

// Emoji returns the badge as a Telegram-friendly symbol.
func (l Level) Emoji() string {
	switch l {
	case Safe:
		return "🟢"
	case Caution:
		return "🟡"
	default:
		return "🔴"
	}
}

func (l Level) String() string {
	switch l {
	case Safe:
		return "safe"
	case Caution:
		return "caution"
	default:
		return "risk"
	}
}

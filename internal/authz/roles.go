package authz

// roles.go defines the closed set of named ranks and the single lookup
// table mapping each rank to its presentation attributes.  Every consumer
// (HTTP responses, webhook decoration) reads from this table; colors and
// emoji are defined nowhere else.

// Named ranks, highest first.  A user's Role column holds one of these
// strings or is empty.
const (
    RoleSupremeLeader = "Supreme Leader"
    RoleGeneral       = "General"
    RoleCaptain       = "Captain"
    RoleSoldier       = "Soldier"
)

// RoleInfo bundles the presentation attributes of a rank.
type RoleInfo struct {
    DisplayColor string // hex color used by clients
    EmbedColor   int    // decimal RGB used in webhook embeds
    Emoji        string // prefix used in plain-text webhook payloads
}

var roleTable = map[string]RoleInfo{
    RoleSupremeLeader: {DisplayColor: "#e3b341", EmbedColor: 0xE3B341, Emoji: "👑"},
    RoleGeneral:       {DisplayColor: "#d64545", EmbedColor: 0xD64545, Emoji: "⚔️"},
    RoleCaptain:       {DisplayColor: "#4596d6", EmbedColor: 0x4596D6, Emoji: "🛡️"},
    RoleSoldier:       {DisplayColor: "#6dbf63", EmbedColor: 0x6DBF63, Emoji: "🪖"},
}

// ValidRole reports whether the given string is one of the named ranks.
func ValidRole(role string) bool {
    _, ok := roleTable[role]
    return ok
}

// LookupRole returns the presentation attributes for a rank.  Unknown or
// empty roles return the zero RoleInfo and false.
func LookupRole(role string) (RoleInfo, bool) {
    info, ok := roleTable[role]
    return info, ok
}

// Roles returns the rank names in precedence order, highest first.  The
// order is fixed so clients can render a stable picker.
func Roles() []string {
    return []string{RoleSupremeLeader, RoleGeneral, RoleCaptain, RoleSoldier}
}

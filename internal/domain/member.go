package domain

// Member is a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Name string
}

// NewMember normalizes the display name on construction.
func NewMember(name string) *Member {
	return &Member{Name: DisplayName(name)}
}

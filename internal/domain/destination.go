package domain

// DestinationKind distinguishes direct contacts from group chats.
type DestinationKind string

const (
	DestContact DestinationKind = "contact"
	DestGroup   DestinationKind = "group"
)

// Destination is a resolved chat addressee: a direct contact or a group.
// User is the mention target inside a group and equals Name for contacts.
type Destination struct {
	Kind DestinationKind
	Name string // contact name or group topic
	User string // sender name the notification belongs to
}

// IsGroup reports whether the destination is a group chat.
func (d Destination) IsGroup() bool { return d.Kind == DestGroup }

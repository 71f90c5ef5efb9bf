package enums

// NotificationCategory classifies a feed entry.
type NotificationCategory string

const (
	NotificationNewItem       NotificationCategory = "NEW_ITEM"
	NotificationAccepted      NotificationCategory = "ACCEPTED"
	NotificationRefused       NotificationCategory = "REFUSED"
	NotificationAssigned      NotificationCategory = "ASSIGNED"
	NotificationResolved      NotificationCategory = "RESOLVED"
	NotificationUnresolved    NotificationCategory = "UNRESOLVED"
	NotificationStatusChanged NotificationCategory = "STATUS_CHANGED"
	NotificationComment       NotificationCategory = "COMMENT"
	NotificationReport        NotificationCategory = "REPORT"
	NotificationSystem        NotificationCategory = "SYSTEM"
)

func (c NotificationCategory) Valid() bool {
	switch c {
	case NotificationNewItem, NotificationAccepted, NotificationRefused,
		NotificationAssigned, NotificationResolved, NotificationUnresolved,
		NotificationStatusChanged, NotificationComment, NotificationReport,
		NotificationSystem:
		return true
	default:
		return false
	}
}

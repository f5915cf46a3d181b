package enums

// NotificationType partitions in-app notifications.
type NotificationType string

const (
	NotificationOrderStatus NotificationType = "order_status"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

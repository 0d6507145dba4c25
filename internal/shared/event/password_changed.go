package event

const PasswordChangedDestination string = "password_changed"
const PasswordChangedDestinationConsumerNotification string = "password_changed_notification"

type PasswordChangedMessage struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

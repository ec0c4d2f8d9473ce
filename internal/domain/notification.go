package domain

import "context"

// NotificationKind is either success or failure.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationFailure NotificationKind = "failure"
)

// ToastStyle holds the inline style applied to a toast.
type ToastStyle struct {
	BorderRadius string
	Background   string
	Color        string
}

// DarkToast is the style of welcome toasts and credential-form failures.
// Federated failures use the surface's default look.
var DarkToast = ToastStyle{
	BorderRadius: "10px",
	Background:   "#333",
	Color:        "#fff",
}

// Notification is one transient message shown on the notification surface.
type Notification struct {
	Kind    NotificationKind
	Message string
	Icon    string
	Style   ToastStyle
}

// Notifier is the sink notifications are displayed through.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

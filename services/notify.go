package services

import "go.uber.org/zap"

// Notification is a toast request, e.g. {"Added to cart", "The Ironclad"}.
type Notification struct {
	Message  string
	ItemName string
}

// Notifier shows toasts. Notify must not block; nothing waits for delivery.
type Notifier interface {
	Notify(owner string, n Notification)
}

type NotifierFunc func(owner string, n Notification)

func (f NotifierFunc) Notify(owner string, n Notification) { f(owner, n) }

// LogNotifier writes toasts to the log; used by front-ends that poll state instead of pushing.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(owner string, n Notification) {
	l.Logger.Debug("toast", zap.String("owner", owner), zap.String("message", n.Message), zap.String("item", n.ItemName))
}

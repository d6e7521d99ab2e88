package push

import "context"

//go:generate mockgen -source=push.go -destination=mock.go -package=push

type Notification struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a single push message and returns the gateway's
// message identifier as the delivery receipt.
type Sender interface {
	Send(ctx context.Context, n *Notification) (string, error)
}

package notification

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
)

// Sender delivers one encrypted web push message.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender sends through the push service named in the subscription.
type WebPushSender struct{}

func (WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

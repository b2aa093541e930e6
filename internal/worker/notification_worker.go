package worker

import (
	"github.com/spec-kit/streetlight-service/internal/events"
	"github.com/spec-kit/streetlight-service/internal/service"
)

// ForwardedEvents are the event types republished to the status queue.
var ForwardedEvents = []events.EventType{
	events.EventComplaintStatusChanged,
}

// StartNotificationWorker registers notification handlers and, when a
// forwarder is given, broker forwarding for status changes.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, forwarder *events.AMQPForwarder) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher != nil && forwarder != nil {
		forwarder.Register(dispatcher, ForwardedEvents...)
	}
}

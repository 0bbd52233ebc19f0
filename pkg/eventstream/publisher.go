package eventstream

import "context"

// Publisher publishes record events to an event stream backend.
type Publisher interface {
	PublishRecord(ctx context.Context, event *RecordEvent) error
	Close() error
}

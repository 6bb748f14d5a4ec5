package service

import (
	"time"

	"github.com/alexanderramin/plangate/internal/realtime"
)

type noopPublisher struct{}

func (noopPublisher) Publish(realtime.Change) {}

func publisherOrNoop(p ChangePublisher) ChangePublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

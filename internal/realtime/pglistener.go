package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/plangate/internal/db"
	"github.com/alexanderramin/plangate/internal/logger"
	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 2 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// PGListener relays row-change notifications from Postgres into a Hub. It is
// the Postgres counterpart of Watcher: every write committed by any process
// sharing the database arrives as a SourceExternal change.
type PGListener struct {
	mu       sync.Mutex
	hub      *Hub
	listener *pq.Listener
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	pings    sync.WaitGroup
}

// NewPGListener opens a dedicated listening connection for connStr.
func NewPGListener(hub *Hub, connStr string) (*PGListener, error) {
	if _, err := db.ValidateConnString(connStr); err != nil {
		return nil, err
	}
	report := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			logger.Warn("change listener disconnected", "err", err)
		case pq.ListenerEventReconnected:
			logger.Info("change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Debug("change listener connection attempt failed", "err", err)
		}
	}
	return &PGListener{
		hub:      hub,
		listener: pq.NewListener(connStr, listenerMinReconnect, listenerMaxReconnect, report),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start subscribes to db.ChangeChannel. It does not block.
func (l *PGListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}
	if err := l.listener.Listen(db.ChangeChannel); err != nil {
		return fmt.Errorf("listening on %s: %w", db.ChangeChannel, err)
	}
	l.running = true
	logger.Debug("listening for database changes", "channel", db.ChangeChannel)

	go l.run(ctx)
	return nil
}

// Stop closes the listening connection and waits for the relay goroutine.
func (l *PGListener) Stop() {
	l.mu.Lock()
	wasRunning := l.running
	l.running = false
	l.mu.Unlock()

	if wasRunning {
		close(l.stopCh)
		<-l.doneCh
	}
	if err := l.listener.Close(); err != nil {
		logger.Debug("closing change listener", "err", err)
	}
	l.pings.Wait()
}

func (l *PGListener) run(ctx context.Context) {
	defer close(l.doneCh)

	ping := time.NewTicker(listenerPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-l.stopCh:
			return

		case n, ok := <-l.listener.Notify:
			if !ok {
				return
			}
			l.hub.Publish(changeFromNotification(n, time.Now().UTC()))

		case <-ping.C:
			// Ping waits on the connection, which may be waiting on us to drain Notify.
			l.pings.Add(1)
			go func() {
				defer l.pings.Done()
				if err := l.listener.Ping(); err != nil {
					logger.Debug("change listener ping failed", "err", err)
				}
			}()
		}
	}
}

type notifyPayload struct {
	Topic string `json:"topic"`
	Op    string `json:"op"`
	Key   string `json:"key"`
}

// changeFromNotification decodes a trigger payload. A nil notification means
// the connection was re-established and notifications may have been missed,
// so it becomes a TopicAll hint, as does a payload that cannot be decoded.
func changeFromNotification(n *pq.Notification, at time.Time) Change {
	all := Change{Topic: TopicAll, Op: OpUpdate, Source: SourceExternal, At: at}
	if n == nil {
		return all
	}
	var p notifyPayload
	if err := json.Unmarshal([]byte(n.Extra), &p); err != nil || p.Topic == "" {
		logger.Debug("undecodable change notification", "payload", n.Extra, "err", err)
		return all
	}
	return Change{
		Topic:  p.Topic,
		Op:     p.Op,
		Key:    p.Key,
		Source: SourceExternal,
		At:     at,
	}
}

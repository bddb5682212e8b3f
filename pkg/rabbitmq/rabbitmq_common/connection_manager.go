package rabbitmq_common

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultReconnectInterval = 10 * time.Second

// ConnectionManager держит одно соединение на процесс, каналы открываются поверх него
type ConnectionManager struct {
	url        string
	connection *amqp.Connection
	mutex      sync.RWMutex
	Logger     Logger

	reconnectInterval time.Duration
	stop              context.CancelFunc
	done              chan struct{}
}

// NewConnectionManager подключается сразу и запускает фоновое переподключение
func NewConnectionManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoopLogger()
	}

	m := &ConnectionManager{
		url:               cfg.URL,
		Logger:            logger,
		reconnectInterval: defaultReconnectInterval,
		done:              make(chan struct{}),
	}
	if _, err := m.getConnection(); err != nil {
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.stop = cancel
	go m.watch(ctx)

	return m, nil
}

func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		defer m.mutex.RUnlock()
		return m.connection, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// могли переподключиться, пока ждали блокировку
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.Logger.Debug("ConnectionManager: connecting")
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.Logger.Info("ConnectionManager: connected")
	return conn, nil
}

// GetChannel открывает новый канал на общем соединении
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) watch(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		closed := m.connection != nil && m.connection.IsClosed()
		m.mutex.RUnlock()
		if !closed {
			continue
		}

		m.Logger.Warn("ConnectionManager: connection closed, reconnecting")
		if _, err := m.getConnection(); err != nil {
			m.Logger.Error(err, "ConnectionManager: reconnect failed")
		}
	}
}

// Close останавливает переподключение и закрывает соединение
func (m *ConnectionManager) Close() error {
	if m.stop != nil {
		m.stop()
		<-m.done
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.connection == nil || m.connection.IsClosed() {
		return nil
	}
	if err := m.connection.Close(); err != nil {
		m.Logger.Error(err, "ConnectionManager: failed to close connection")
		return err
	}
	m.Logger.Info("ConnectionManager: connection closed")
	return nil
}

package rabbitmq

import (
	"fmt"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"
)

// PkgLoggerBridge отдает LoggerPort сервиса пакету rabbitmq через его интерфейс key-value
type PkgLoggerBridge struct {
	internalLogger port.LoggerPort
}

func NewPkgLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	return &PkgLoggerBridge{internalLogger: logger}
}

// toFields: нечетный хвост и нестроковые ключи не теряются, а пишутся под искусственным ключом
func toFields(keysAndValues ...interface{}) port.Fields {
	fields := make(port.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("arg_%d", i)
		}
		if i+1 >= len(keysAndValues) {
			fields[key] = "(MISSING)"
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func (b *PkgLoggerBridge) Debug(msg string, keysAndValues ...interface{}) {
	b.internalLogger.Debug(msg, toFields(keysAndValues...))
}

func (b *PkgLoggerBridge) Info(msg string, keysAndValues ...interface{}) {
	b.internalLogger.Info(msg, toFields(keysAndValues...))
}

func (b *PkgLoggerBridge) Warn(msg string, keysAndValues ...interface{}) {
	b.internalLogger.Warn(msg, toFields(keysAndValues...))
}

func (b *PkgLoggerBridge) Error(err error, msg string, keysAndValues ...interface{}) {
	b.internalLogger.Error(msg, err, toFields(keysAndValues...))
}

package constants

const (
	SearchExchange     = "search_exchange"
	SearchExchangeType = "topic"
)

const (
	QueueStreetIndexRefreshRequests = "street_index_refresh_requests"
	ConsumerTagStreetIndexRefresh   = "dvf-search-service.street-index-refresh"
)

const (
	RoutingKeyStreetIndexRefresh   = "street_index.refresh"
	RoutingKeyStreetIndexRefreshed = "street_index.refreshed"
)

// Ретраи запросов на обновление
const (
	RefreshRetryExchange = "street_index_refresh_retry_exchange"
	RefreshRetryQueue    = "street_index_refresh_retry_wait"
	RefreshRetryTTL      = 30000
	RefreshMaxRetries    = 3

	RefreshFinalDLXExchange   = "street_index_refresh_final_dlx"
	RefreshFinalDLQ           = "street_index_refresh_final_dlq"
	RefreshFinalDLQRoutingKey = "street_index.refresh.dlq"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)

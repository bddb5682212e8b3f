package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSchemas(t *testing.T) {
	require.NoError(t, LoadSchemas())
	assert.Contains(t, compiledSchemas, "IndexRefreshRequestedEvent/1.0.0")
	assert.Contains(t, compiledSchemas, "StreetIndexRefreshedEvent/1.0.0")
}

func TestKeyFromPath(t *testing.T) {
	assert.Equal(t, "IndexRefreshRequestedEvent/1.0.0", keyFromPath("schemas/events/index-refresh-requested/v1.json"))
	assert.Equal(t, "StreetIndexRefreshedEvent/2.0.0", keyFromPath("schemas/events/street-index-refreshed/v2.json"))
	assert.Equal(t, "", keyFromPath("schemas/events/orphan.json"))
	assert.Equal(t, "", keyFromPath("schemas/events/foo/bar.json"))
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		body      string
		wantErr   string
	}{
		{
			name:      "valid refresh request",
			eventType: EventIndexRefreshRequested,
			body:      `{"requested_at":"2024-05-01T10:00:00Z","requested_by":"dvf-import","reason":"nightly load"}`,
		},
		{
			name:      "missing requested_at",
			eventType: EventIndexRefreshRequested,
			body:      `{"reason":"manual"}`,
			wantErr:   "JSON schema validation failed",
		},
		{
			name:      "unknown property",
			eventType: EventIndexRefreshRequested,
			body:      `{"requested_at":"2024-05-01T10:00:00Z","force":true}`,
			wantErr:   "JSON schema validation failed",
		},
		{
			name:      "bad date-time",
			eventType: EventIndexRefreshRequested,
			body:      `{"requested_at":"yesterday"}`,
			wantErr:   "JSON schema validation failed",
		},
		{
			name:      "not json",
			eventType: EventIndexRefreshRequested,
			body:      `{`,
			wantErr:   "not a valid JSON",
		},
		{
			name:      "valid refreshed event",
			eventType: EventStreetIndexRefreshed,
			body:      `{"trigger":"http","started_at":"2024-05-01T10:00:00Z","finished_at":"2024-05-01T10:00:03Z","duration_ms":3000,"success":true}`,
		},
		{
			name:      "unknown trigger",
			eventType: EventStreetIndexRefreshed,
			body:      `{"trigger":"cron","started_at":"2024-05-01T10:00:00Z","finished_at":"2024-05-01T10:00:03Z","duration_ms":3000,"success":true}`,
			wantErr:   "JSON schema validation failed",
		},
		{
			name:      "unknown event",
			eventType: "ListingCreatedEvent",
			body:      `{}`,
			wantErr:   "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(tt.eventType, EventVersionV1, []byte(tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

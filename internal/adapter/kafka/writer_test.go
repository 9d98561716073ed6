package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	ta := -2.4
	obs := domain.Observation{Time: "202401010000", StationID: "108", AirTemp: &ta, CloudType: "Sc"}

	msg, err := serializeToMessage(obs, "run-1", now)
	require.NoError(t, err)

	assert.Equal(t, []byte("108"), msg.Key)
	assert.Contains(t, string(msg.Value), `"TA":-2.4`)
	assert.Contains(t, string(msg.Value), `"HM":null`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "observed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("202401010000"), msg.Headers[1].Value)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var back domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, obs, back)
}

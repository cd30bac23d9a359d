package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTimeMarshalJSON(t *testing.T) {
	lt := NewLocalTime(time.Date(2025, 9, 15, 14, 30, 0, 0, time.Local))
	data, err := json.Marshal(lt)
	require.NoError(t, err)
	// Без зоны и без UTC-конверсии
	assert.Equal(t, `"2025-09-15T14:30:00"`, string(data))

	data, err = json.Marshal(LocalTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestLocalTimeUnmarshalJSON(t *testing.T) {
	cases := []string{
		`"2025-09-15T14:30:00"`,
		`"2025-09-15T14:30:00.123456"`,
	}
	for _, raw := range cases {
		var lt LocalTime
		require.NoError(t, json.Unmarshal([]byte(raw), &lt), raw)
		assert.Equal(t, 14, lt.Hour(), raw)
		assert.Equal(t, 30, lt.Minute(), raw)
		assert.Equal(t, time.Local, lt.Location(), raw)
	}

	var lt LocalTime
	require.NoError(t, json.Unmarshal([]byte("null"), &lt))
	assert.True(t, lt.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"15.09.2025"`), &lt))
}

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeIDMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(SnowflakeID(1917552479186259968))
	require.NoError(t, err)
	assert.Equal(t, `"1917552479186259968"`, string(data))
}

func TestSnowflakeIDUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    SnowflakeID
		wantErr bool
	}{
		{`"1917552479186259968"`, 1917552479186259968, false},
		{`1917552479186259968`, 1917552479186259968, false},
		{`"not-a-number"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		var id SnowflakeID
		err := json.Unmarshal([]byte(tt.in), &id)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, id)
	}
}

func TestSnowflakeIDScan(t *testing.T) {
	var id SnowflakeID
	require.NoError(t, id.Scan(int64(123)))
	assert.Equal(t, SnowflakeID(123), id)

	require.NoError(t, id.Scan([]byte("456")))
	assert.Equal(t, SnowflakeID(456), id)

	assert.Error(t, id.Scan(3.14))
}

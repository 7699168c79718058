package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataMarshal(t *testing.T) {
	t.Run("Marshal empty metadata", func(t *testing.T) {
		bytes, err := Metadata{}.Marshal()

		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), bytes)
	})

	t.Run("Marshal nil metadata", func(t *testing.T) {
		var m Metadata

		bytes, err := m.Marshal()

		require.NoError(t, err)
		assert.Equal(t, []byte("null"), bytes)
	})
}

func TestMetadataUnmarshal(t *testing.T) {
	t.Run("Unmarshal valid JSON bytes", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal([]byte(`{"annotator":"a1","confidence":0.5}`))

		require.NoError(t, err)
		assert.Equal(t, "a1", m["annotator"])
		assert.Equal(t, 0.5, m["confidence"])
	})

	t.Run("Unmarshal JSON string", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(`{"normalized":"2020-01-05"}`)

		require.NoError(t, err)
		assert.Equal(t, "2020-01-05", m["normalized"])
	})

	t.Run("Unmarshal nil value", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(nil)

		require.NoError(t, err)
		assert.Equal(t, Metadata{}, m)
	})

	t.Run("Unmarshal Metadata directly", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(Metadata{"key": "value"})

		require.NoError(t, err)
		assert.Equal(t, "value", m["key"])
	})

	t.Run("Unmarshal invalid type", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(42)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "type assertion")
	})
}

func TestMetadataValueScan(t *testing.T) {
	t.Run("Value then Scan preserves data", func(t *testing.T) {
		original := Metadata{"annotator": "a1", "round": float64(2)}

		value, err := original.Value()
		require.NoError(t, err)

		var scanned Metadata
		require.NoError(t, scanned.Scan(value))
		assert.Equal(t, original, scanned)
	})
}

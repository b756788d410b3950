package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Linen Shirt":         "linen-shirt",
		"Café Crème Mug":      "cafe-creme-mug",
		"Ñandú Tee":           "nandu-tee",
		"  Summer -- Sale!  ": "summer-sale",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCartViewAlwaysCarriesUpdatedAt(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(CartView{Items: []CartItemView{}})
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "updatedAt")

	stamp := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(CartView{UpdatedAt: stamp})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"updatedAt":"2025-03-10T09:00:00Z"`)
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	products, err := Default()
	require.NoError(t, err)
	require.Len(t, products, 6)

	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(3000), products[0].Price)
	assert.Equal(t, "일", products[0].PriceUnit)
	assert.True(t, products[0].HasCoordinates())
	assert.False(t, products[1].IsAvailable)
	//image_url がない商品もある
	assert.Empty(t, products[3].ImageURL)
}

func TestParse_Defaults(t *testing.T) {
	products, err := Parse([]byte(`
[[products]]
id = 7
title = "  자전거  "
category = "운동용품"
price = 5000
`))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "자전거", products[0].Title)
	assert.Equal(t, "일", products[0].PriceUnit)
	assert.True(t, products[0].IsAvailable)
	assert.Nil(t, products[0].DistanceKm)
	assert.False(t, products[0].HasCoordinates())
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"zero id":        "[[products]]\nid = 0\ntitle = \"a\"\nprice = 1\n",
		"duplicate id":   "[[products]]\nid = 1\ntitle = \"a\"\nprice = 1\n[[products]]\nid = 1\ntitle = \"b\"\nprice = 1\n",
		"blank title":    "[[products]]\nid = 1\ntitle = \" \"\nprice = 1\n",
		"negative price": "[[products]]\nid = 1\ntitle = \"a\"\nprice = -1\n",
		"lat only":       "[[products]]\nid = 1\ntitle = \"a\"\nprice = 1\nlatitude = 37.5\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}

	_, err := Parse([]byte("[[products]\nid ="))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[products]]\nid = 1\ntitle = \"a\"\nprice = 100\n"), 0o600))

	products, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

package validator

import (
	"math"
	"strings"
	"testing"

	"rental/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationValidator_RoundTrip(t *testing.T) {
	v := NewLocationValidator()
	loc := model.NewLocation(37.5006, 127.0364, "서울시 강남구 역삼동", "")

	raw, err := v.EncodeLocation(loc)
	require.NoError(t, err)

	got, err := v.DecodeLocation(raw)
	require.NoError(t, err)
	assert.Equal(t, loc, got)
}

func TestLocationValidator_DecodeMalformed(t *testing.T) {
	v := NewLocationValidator()
	for _, raw := range []string{
		"",
		"null",
		"[]",
		`{"latitude":37.5,"longitude":127.0,"address":"a"}`,
		`{"latitude":37.5,"longitude":"127","address":"a","district":"b"}`,
		`{"latitude":37.5,"longitude":200,"address":"a","district":"b"}`,
		`{"latitude":37.5,"longitude":127.0,"address":"","district":"b"}`,
		`{"latitude":37.5,"longitude":127.0,"address":" ","district":"b"}`,
	} {
		_, err := v.DecodeLocation([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedLocation, raw)
	}
}

func TestLocationValidator_ValidateCoordinates(t *testing.T) {
	v := NewLocationValidator()
	assert.NoError(t, v.ValidateCoordinates(37.5, 127.0))
	assert.ErrorIs(t, v.ValidateCoordinates(91, 0), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateCoordinates(0, -181), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateCoordinates(math.NaN(), 0), ErrInvalidInput)
}

func TestLocationValidator_ValidateAddress(t *testing.T) {
	v := NewLocationValidator()
	assert.NoError(t, v.ValidateAddress("서울시 강남구"))
	assert.ErrorIs(t, v.ValidateAddress("  "), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateAddress(strings.Repeat("가", 201)), ErrInvalidInput)
}

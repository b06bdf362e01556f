package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKakaoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/local/geo/coord2address.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "KakaoAK test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("x") == "0" {
			_, _ = w.Write([]byte(`{"documents":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"documents":[{"road_address":{"address_name":"서울 성동구 아차산로 100"},"address":{"address_name":"서울 성동구 성수동2가 1"}}]}`))
	})
	mux.HandleFunc("/v2/local/search/address.json", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "서울시 강남구 역삼동":
			_, _ = w.Write([]byte(`{"documents":[{"address_name":"서울 강남구 역삼동","x":"127.0364","y":"37.5006"}]}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"documents":[]}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestKakao_Reverse(t *testing.T) {
	srv := newKakaoServer(t)
	k := NewKakao(srv.URL+"/", "test-key", time.Second)

	res, err := k.Reverse(context.Background(), 37.5446, 127.0559)
	require.NoError(t, err)
	assert.Equal(t, "서울 성동구 성수동2가 1", res.Address)

	_, err = k.Reverse(context.Background(), 0, 0)
	assert.ErrorIs(t, err, model.ErrGeocodeFailed)
}

func TestKakao_Forward(t *testing.T) {
	srv := newKakaoServer(t)
	k := NewKakao(srv.URL, "test-key", time.Second)

	res, err := k.Forward(context.Background(), "서울시 강남구 역삼동")
	require.NoError(t, err)
	assert.Equal(t, 37.5006, res.Latitude)
	assert.Equal(t, 127.0364, res.Longitude)

	_, err = k.Forward(context.Background(), "없는 주소")
	assert.ErrorIs(t, err, model.ErrGeocodeFailed)

	_, err = k.Forward(context.Background(), "broken")
	assert.ErrorIs(t, err, model.ErrGeocodeFailed)
}

func TestKakao_Unauthorized(t *testing.T) {
	srv := newKakaoServer(t)
	k := NewKakao(srv.URL, "wrong", time.Second)

	_, err := k.Reverse(context.Background(), 37.5, 127.0)
	assert.ErrorIs(t, err, model.ErrGeocodeFailed)
}

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rental/internal/domain/model"
)

// Kakao Local API のクライアント
type Kakao struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewKakao(baseURL, apiKey string, timeout time.Duration) *Kakao {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Kakao{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type kakaoCoord2AddressResponse struct {
	Documents []struct {
		Address *struct {
			AddressName string `json:"address_name"`
		} `json:"address"`
		RoadAddress *struct {
			AddressName string `json:"address_name"`
		} `json:"road_address"`
	} `json:"documents"`
}

type kakaoSearchAddressResponse struct {
	Documents []struct {
		AddressName string `json:"address_name"`
		X           string `json:"x"`
		Y           string `json:"y"`
	} `json:"documents"`
}

// Reverse: /v2/local/geo/coord2address.json
func (k *Kakao) Reverse(ctx context.Context, lat, lng float64) (model.GeocodeResult, error) {
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))

	var resp kakaoCoord2AddressResponse
	if err := k.get(ctx, "/v2/local/geo/coord2address.json", q, &resp); err != nil {
		return model.GeocodeResult{}, err
	}

	for _, d := range resp.Documents {
		//区が入っている地番住所を優先
		if d.Address != nil && strings.TrimSpace(d.Address.AddressName) != "" {
			return model.GeocodeResult{Address: d.Address.AddressName, Latitude: lat, Longitude: lng}, nil
		}
		if d.RoadAddress != nil && strings.TrimSpace(d.RoadAddress.AddressName) != "" {
			return model.GeocodeResult{Address: d.RoadAddress.AddressName, Latitude: lat, Longitude: lng}, nil
		}
	}
	return model.GeocodeResult{}, fmt.Errorf("%w: no address for coordinate", model.ErrGeocodeFailed)
}

// Forward: /v2/local/search/address.json
func (k *Kakao) Forward(ctx context.Context, address string) (model.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.GeocodeResult{}, fmt.Errorf("%w: empty address", model.ErrGeocodeFailed)
	}

	q := url.Values{}
	q.Set("query", address)

	var resp kakaoSearchAddressResponse
	if err := k.get(ctx, "/v2/local/search/address.json", q, &resp); err != nil {
		return model.GeocodeResult{}, err
	}
	if len(resp.Documents) == 0 {
		return model.GeocodeResult{}, fmt.Errorf("%w: no match for %q", model.ErrGeocodeFailed, address)
	}

	d := resp.Documents[0]
	lng, err := strconv.ParseFloat(d.X, 64)
	if err != nil {
		return model.GeocodeResult{}, fmt.Errorf("%w: bad x %q", model.ErrGeocodeFailed, d.X)
	}
	lat, err := strconv.ParseFloat(d.Y, 64)
	if err != nil {
		return model.GeocodeResult{}, fmt.Errorf("%w: bad y %q", model.ErrGeocodeFailed, d.Y)
	}
	return model.GeocodeResult{Address: d.AddressName, Latitude: lat, Longitude: lng}, nil
}

func (k *Kakao) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", model.ErrGeocodeFailed, err)
	}
	req.Header.Set("Authorization", "KakaoAK "+k.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrGeocodeFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: kakao status %d", model.ErrGeocodeFailed, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", model.ErrGeocodeFailed, err)
	}
	return nil
}

package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"rental/internal/domain/model"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// 保存済みの位置が壊れている
	ErrMalformedLocation = errors.New("malformed persisted location")
)

// 保存する Location の形
const locationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["latitude", "longitude", "address", "district"],
  "properties": {
    "latitude":  {"type": "number", "minimum": -90,  "maximum": 90},
    "longitude": {"type": "number", "minimum": -180, "maximum": 180},
    "address":   {"type": "string", "minLength": 1},
    "district":  {"type": "string", "minLength": 1}
  }
}`

// 位置まわりの入力と保存データを検証する
type LocationValidator struct {
	schema *jsonschema.Schema
}

func NewLocationValidator() *LocationValidator {
	return &LocationValidator{
		schema: jsonschema.MustCompileString("location.schema.json", locationSchema),
	}
}

// DecodeLocation は保存済み JSON を検証してから Location に戻す。
func (v *LocationValidator) DecodeLocation(raw []byte) (model.Location, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Location{}, ErrMalformedLocation
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Location{}, fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return model.Location{}, fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}

	var loc model.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return model.Location{}, fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	if strings.TrimSpace(loc.Address) == "" || strings.TrimSpace(loc.District) == "" {
		return model.Location{}, ErrMalformedLocation
	}
	return loc, nil
}

// EncodeLocation は保存用の JSON を返す。
func (v *LocationValidator) EncodeLocation(loc model.Location) ([]byte, error) {
	return json.Marshal(loc)
}

// 座標の範囲チェック
func (v *LocationValidator) ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return ErrInvalidInput
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidInput)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidInput)
	}
	return nil
}

// 手入力住所のチェック（空白のみは不可）
func (v *LocationValidator) ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrInvalidInput
	}
	if len([]rune(address)) > 200 {
		return fmt.Errorf("%w: address too long", ErrInvalidInput)
	}
	return nil
}

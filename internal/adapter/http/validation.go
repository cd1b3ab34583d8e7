package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-inference-service/internal/domain"
)

// Validation error types reported in the 422 response body.
const (
	errTypeJSONInvalid = "json_invalid"
	errTypeObject      = "model_attributes_type"
	errTypeMissing     = "missing"
	errTypeFloat       = "float_type"
	errTypeFloatParse  = "float_parsing"
	errTypeFinite      = "finite_number"
)

// fieldError describes one rejected input. Loc is ["body", <field>].
type fieldError struct {
	Type  string          `json:"type"`
	Loc   []string        `json:"loc"`
	Msg   string          `json:"msg"`
	Input json.RawMessage `json:"input,omitempty"`
}

type validationResponse struct {
	Detail []fieldError `json:"detail"`
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// decodeFeatures validates a scoring request body and assembles the feature
// vector in contract order. Key order in the body is irrelevant and unknown
// keys are ignored. All field problems are reported together.
func decodeFeatures(body []byte) (domain.FeatureVector, []fieldError) {
	if !json.Valid(body) {
		return domain.FeatureVector{}, []fieldError{{
			Type: errTypeJSONInvalid,
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
		}}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return domain.FeatureVector{}, []fieldError{{
			Type:  errTypeObject,
			Loc:   []string{"body"},
			Msg:   "Input should be a valid dictionary or object to extract fields from",
			Input: compact(body),
		}}
	}

	var (
		v    domain.FeatureVector
		errs []fieldError
	)
	for i, f := range domain.Features {
		raw, ok := fields[f.Field]
		if !ok {
			errs = append(errs, fieldError{
				Type: errTypeMissing,
				Loc:  []string{"body", f.Field},
				Msg:  "Field required",
			})
			continue
		}
		x, ferr := parseFloat(raw)
		if ferr != nil {
			ferr.Loc = []string{"body", f.Field}
			ferr.Input = raw
			errs = append(errs, *ferr)
			continue
		}
		v[i] = x
	}
	if len(errs) > 0 {
		return domain.FeatureVector{}, errs
	}
	return v, nil
}

// parseFloat accepts a JSON number or a string holding a number. The result
// must be finite.
func parseFloat(raw json.RawMessage) (float64, *fieldError) {
	s := string(bytes.TrimSpace(raw))
	if s == "" {
		return 0, &fieldError{Type: errTypeFloat, Msg: "Input should be a valid number"}
	}

	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, &fieldError{Type: errTypeFloatParse, Msg: "Input should be a valid number, unable to parse string as a number"}
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, &fieldError{Type: errTypeFloatParse, Msg: "Input should be a valid number, unable to parse string as a number"}
		}
		return checkFinite(x)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		x, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, &fieldError{Type: errTypeFloat, Msg: "Input should be a valid number"}
		}
		return checkFinite(x)
	default:
		return 0, &fieldError{Type: errTypeFloat, Msg: "Input should be a valid number"}
	}
}

func checkFinite(x float64) (float64, *fieldError) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &fieldError{Type: errTypeFinite, Msg: "Input should be a finite number"}
	}
	return x, nil
}

func compact(body []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil
	}
	return buf.Bytes()
}

package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion guards clients against future envelope shape changes.
const envelopeVersion = 1

// Envelope is the wire shape every response body is wrapped in.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the standard
// envelope so clients parse one shape everywhere.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)
	success := code < 400

	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}
	if !success {
		if err, ok := v.(error); ok {
			return &Envelope{V: envelopeVersion, Success: false, Error: err.Error()}, nil
		}
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind tags a failed API call
type ErrorKind int

const (
	// KindTransport covers calls that got no response (Status 0) and server
	// rejections whose body is not a field-error map
	KindTransport ErrorKind = iota
	// KindValidation is a 4xx whose body maps field names to messages
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	default:
		return "transport"
	}
}

// Error is returned by every failed call of Client
type Error struct {
	Kind   ErrorKind
	Method string
	Path   string
	// Status is 0 when no response was received
	Status int
	// Message is the server's "detail", or a description of the failure
	Message string
	// Fields holds the first message per field for KindValidation
	Fields map[string]string
	// Body is the raw response body, if any
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindValidation {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		return "validation failed: " + strings.Join(parts, "; ")
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether no response was received
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

// AsError extracts the tagged API error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Detail returns the server's detail message for err when it has one
func Detail(err error) (string, bool) {
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindTransport || apiErr.Status == 0 {
		return "", false
	}
	if detail := detailOf(apiErr.Body); detail != "" {
		return detail, true
	}
	return "", false
}

func networkError(method, path string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Method:  method,
		Path:    path,
		Message: err.Error(),
		Err:     err,
	}
}

// responseError classifies a non-2xx response
func responseError(method, path string, status int, body []byte) *Error {
	apiErr := &Error{
		Kind:   KindTransport,
		Method: method,
		Path:   path,
		Status: status,
		Body:   body,
	}

	if status >= 400 && status < 500 {
		if fields, ok := fieldErrors(body); ok {
			apiErr.Kind = KindValidation
			apiErr.Fields = fields
			return apiErr
		}
	}

	if detail := detailOf(body); detail != "" {
		apiErr.Message = detail
	} else {
		apiErr.Message = StatusMessage(status)
	}
	return apiErr
}

// StatusMessage describes a rejected call that carried no detail
func StatusMessage(status int) string {
	return fmt.Sprintf("Request failed with status code %d", status)
}

func detailOf(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// fieldErrors decodes {"field": "msg"} or {"field": ["msg", ...]} bodies.
// A body carrying "detail" is a plain rejection, not a field map.
func fieldErrors(body []byte) (map[string]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	if _, ok := raw["detail"]; ok {
		return nil, false
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		var msg string
		if err := json.Unmarshal(value, &msg); err == nil {
			fields[key] = msg
			continue
		}

		var msgs []string
		if err := json.Unmarshal(value, &msgs); err == nil && len(msgs) > 0 {
			fields[key] = msgs[0]
			continue
		}

		return nil, false
	}
	return fields, true
}

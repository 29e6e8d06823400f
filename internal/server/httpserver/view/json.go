package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/omriasta/core/internal/core/domain"
)

// JSON returns a compressed application/json response for result. Object
// keys are sorted at every level, HTML characters are not escaped and
// non-finite numbers are rejected. A status of 0 means 200.
//
// Failures are reported as an error matching domain.ErrSerialization,
// carrying the encoder error as cause and the result as details. The
// Adapter logs them when a view returns one.
func JSON(result any, status int, header http.Header) (*Response, error) {
	body, err := marshalCanonical(result)
	if err != nil {
		return nil, domain.ErrSerialization.WithDetails(fmt.Sprintf("%v", result)).WithCause(err)
	}

	if status == 0 {
		status = http.StatusOK
	}

	h := make(http.Header, len(header)+1)
	h.Set("Content-Type", "application/json")
	for k, vs := range header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	return &Response{
		Status:   status,
		Header:   h,
		Body:     body,
		Compress: true,
	}, nil
}

// JSONMessage returns JSON({"message": message}), adding "code" when code
// is not empty.
func JSONMessage(message string, status int, code string, header http.Header) (*Response, error) {
	data := map[string]string{"message": message}
	if code != "" {
		data["code"] = code
	}
	return JSON(data, status, header)
}

// marshalCanonical encodes v, then re-encodes the decoded tree so struct
// fields are ordered like map keys.
func marshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

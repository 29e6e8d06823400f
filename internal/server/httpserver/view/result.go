package view

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Result is what a view handler returns. The set of variants is closed:
// *Response, Stream, WithStatus, Bytes, Text, Empty and *Future. A nil
// Result is an empty payload.
type Result interface {
	isResult()
}

// Response is a complete response, written as is.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// Compress negotiates gzip with the client.
	Compress bool
}

// Stream is a complete response produced by writing directly to the
// connection.
type Stream func(w http.ResponseWriter, r *http.Request)

// WithStatus pairs a payload with a status code.
type WithStatus struct {
	Payload Result
	Status  int
}

// Bytes is a payload written unchanged.
type Bytes []byte

// Text is a payload written as UTF-8.
type Text string

// Empty is an empty payload.
type Empty struct{}

func (*Response) isResult()  {}
func (Stream) isResult()     {}
func (WithStatus) isResult() {}
func (Bytes) isResult()      {}
func (Text) isResult()       {}
func (Empty) isResult()      {}

var gzipWrap = mustGzipWrapper()

func mustGzipWrapper() func(http.Handler) http.HandlerFunc {
	wrap, err := gzhttp.NewWrapper()
	if err != nil {
		panic(err)
	}
	return wrap
}

// Write sends the response, compressing the body when Compress is set and
// the client accepts gzip.
func (resp *Response) Write(w http.ResponseWriter, r *http.Request) {
	if !resp.Compress {
		resp.write(w)
		return
	}
	gzipWrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp.write(w)
	})).ServeHTTP(w, r)
}

func (resp *Response) write(w http.ResponseWriter) {
	h := w.Header()
	for k, vs := range resp.Header {
		h[k] = append([]string(nil), vs...)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

// payload converts a payload variant into a body and its content type.
// Anything else breaks the handler contract and panics.
func payload(res Result) (body []byte, contentType string) {
	switch p := res.(type) {
	case nil, Empty:
		return nil, ""
	case Bytes:
		return p, "application/octet-stream"
	case Text:
		return []byte(p), "text/plain; charset=utf-8"
	default:
		panic(fmt.Sprintf("view: result should be Empty, Text, Bytes or a complete response, got %T", res))
	}
}

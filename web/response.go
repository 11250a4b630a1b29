package web

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeJSON   = "application/json; charset=utf-8"
	contentTypeMarkup = "text/html; charset=utf-8"
)

// Response is the single unit this layer hands back to the transport:
// body bytes, a status code and the content type the body is encoded
// in. The transport emits Content-Length as the exact byte length of
// Body before writing it.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// JSON builds a response whose body is the UTF-8 JSON encoding of
// data. A value that cannot be marshalled degrades to a 500 with a
// generic JSON error body, so the content type always agrees with the
// payload.
func JSON(data any, status int) Response {
	body, err := json.Marshal(data)
	if err != nil {
		body = []byte(`{"success":false,"error":"response encoding failed"}`)
		status = http.StatusInternalServerError
	}

	return Response{
		StatusCode:  status,
		ContentType: contentTypeJSON,
		Body:        body,
	}
}

// Markup builds an HTML response. The body is passed through
// unmodified, no re-encoding or truncation.
func Markup(body []byte, status int) Response {
	return Response{
		StatusCode:  status,
		ContentType: contentTypeMarkup,
		Body:        body,
	}
}

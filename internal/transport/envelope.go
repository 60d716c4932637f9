package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Envelope describes a single HTTP call: method, path relative to the
// platform base URL, optional query and headers, and an optional body.
// An Envelope is built fresh per call and never reused.
type Envelope struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   BodySource
}

// BodySource produces a request body and its content type. A nil
// BodySource means no body.
type BodySource interface {
	ContentType() string
	Open() (io.Reader, error)
}

type jsonBody struct {
	value any
}

// JSONBody encodes v as the JSON request body.
func JSONBody(v any) BodySource {
	return jsonBody{value: v}
}

func (b jsonBody) ContentType() string { return "application/json" }

func (b jsonBody) Open() (io.Reader, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// FilePart is one file attachment in a multipart body.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

type multipartBody struct {
	fields      map[string]string
	files       []FilePart
	contentType string
	buf         *bytes.Buffer
}

// MultipartBody builds a multipart/form-data body from plain fields and
// file parts. The form is assembled eagerly so the boundary is known
// before the request is issued.
func MultipartBody(fields map[string]string, files ...FilePart) (BodySource, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("writing form field %q: %w", name, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("creating form file %q: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copying form file %q: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}
	return &multipartBody{contentType: w.FormDataContentType(), buf: buf}, nil
}

func (b *multipartBody) ContentType() string { return b.contentType }

func (b *multipartBody) Open() (io.Reader, error) { return b.buf, nil }

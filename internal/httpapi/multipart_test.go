package httpapi

import (
	"bytes"
	"mime/multipart"
	"testing"
)

// newMultipart writes a single-file form into buf and returns its Content-Type.
func newMultipart(t *testing.T, buf *bytes.Buffer, field, name, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return mw.FormDataContentType()
}

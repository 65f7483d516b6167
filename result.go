package htmlprint

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// Format identifies an output document format.
type Format int

// Supported output formats.
const (
	FormatPDF Format = iota + 1
	FormatDOCX
	FormatEPUB
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatEPUB:
		return "epub"
	default:
		return "unknown"
	}
}

// Ext returns the conventional file extension including the dot.
func (f Format) Ext() string {
	if f.String() == "unknown" {
		return ""
	}
	return "." + f.String()
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatEPUB:
		return "application/epub+zip"
	default:
		return "application/octet-stream"
	}
}

// Result holds a generated document and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// A Result is returned by every conversion method. It is safe to call
// its methods multiple times; the underlying data is never modified.
type Result struct {
	data   []byte
	format Format
}

// Bytes returns the raw document content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Format reports which format the document is in.
func (r *Result) Format() Format {
	return r.format
}

// Base64 returns the document encoded as a standard base64 string (RFC 4648).
// This is useful for embedding in JSON payloads or uploading to services
// that accept base64-encoded content.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the document content.
// This is suitable for streaming uploads to cloud storage (GCP, AWS S3, etc.)
// or any API that accepts an [io.Reader].
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full document content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the document to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the document in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

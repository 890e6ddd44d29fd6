// Package document converts user-supplied statement files into the inline
// payload shape the model transport expects: base64 text plus a MIME tag.
package document

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// MaxFileSize is the upload cap. Statements are single images or short PDFs;
// anything larger is rejected before any network call.
const MaxFileSize = 10 << 20

// ErrUnsupportedType is returned when the MIME type is outside the
// allow-list. The check runs before any encoding work.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrFileTooLarge is returned for payloads above MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// allowedTypes mirrors the upload form's accept list: common image formats
// plus PDF.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Inline is a transport-ready document: base64-encoded bytes paired with
// the MIME type the model should interpret them as.
type Inline struct {
	FileName string
	MIMEType string
	Data     string // standard base64, no data-URL prefix
	Size     int    // decoded byte length
}

// Encode validates the MIME type and size, then base64-encodes the bytes.
func Encode(fileName, mimeType string, data []byte) (*Inline, error) {
	if !allowedTypes[mimeType] {
		return nil, fmt.Errorf("document.Encode: %w: %q", ErrUnsupportedType, mimeType)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("document.Encode: %w: %d bytes", ErrFileTooLarge, len(data))
	}
	return &Inline{
		FileName: fileName,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     len(data),
	}, nil
}

// Bytes decodes the payload back to raw bytes for the model call.
func (in *Inline) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(in.Data)
	if err != nil {
		return nil, fmt.Errorf("document.Bytes: %w", err)
	}
	return b, nil
}

// Supported reports whether the MIME type is on the allow-list.
func Supported(mimeType string) bool {
	return allowedTypes[mimeType]
}

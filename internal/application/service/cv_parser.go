package service

import "context"

type CVParser interface {
	// ExtractText decodes a base64 PDF and returns its plain text.
	ExtractText(ctx context.Context, pdfBase64 string) (string, error)
}

package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/pkg/apperror"
)

var pdfMagic = []byte("%PDF")

type Parser struct{}

var _ service.CVParser = (*Parser)(nil)

func NewParser() *Parser {
	return &Parser{}
}

// ExtractText accepts raw base64 or a data URL and returns the document text.
// Every failure is an invalid-input error whose detail starts with "Error parsing PDF".
func (p *Parser) ExtractText(ctx context.Context, pdfBase64 string) (text string, err error) {
	data, err := decode(pdfBase64)
	if err != nil {
		return "", parseError(err)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", parseError(fmt.Errorf("not a PDF document"))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", parseError(fmt.Errorf("malformed PDF: %v", r))
		}
	}()

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", parseError(fmt.Errorf("pdf reader: %w", err))
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", parseError(fmt.Errorf("pdf plaintext: %w", err))
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", parseError(fmt.Errorf("pdf read: %w", err))
	}
	return strings.TrimSpace(string(b)), nil
}

func decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if s == "" {
		return nil, fmt.Errorf("empty document")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	return data, nil
}

func parseError(err error) error {
	return apperror.NewInvalidInput("Error parsing PDF: "+err.Error(), err)
}

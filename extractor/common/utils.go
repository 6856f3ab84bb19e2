package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dslipak/pdf"
	log "github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/common/license"
	unidoc "github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ErrNoText is returned when a document parses but yields no text rows.
var ErrNoText = errors.New("no text found in document")

var (
	uniPDFMu      sync.Mutex
	uniPDFEnabled bool
)

// EnableUniPDF registers a UniDoc metered key so that documents the primary
// reader cannot handle are retried with unipdf's text extractor.
func EnableUniPDF(key string) error {
	uniPDFMu.Lock()
	defer uniPDFMu.Unlock()

	if key == "" {
		uniPDFEnabled = false
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("unipdf license: %w", err)
	}
	uniPDFEnabled = true
	return nil
}

func uniPDFAvailable() bool {
	uniPDFMu.Lock()
	defer uniPDFMu.Unlock()
	return uniPDFEnabled
}

func ExtractRowsFromPDFReader(reader io.Reader) (*[]string, error) {
	// Ensure we have an io.ReaderAt and know the size
	var rAt io.ReaderAt
	var size int64

	switch v := reader.(type) {
	case *bytes.Reader:
		rAt = v
		size = v.Size()
	default:
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, err
		}
		b := buf.Bytes()
		rAt = bytes.NewReader(b)
		size = int64(len(b))
	}

	r, err := pdf.NewReader(rAt, size)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	extractedRows := make([]string, 0, numPages*100)

	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		rows, err := page.GetTextByRow()
		if err != nil {
			log.WithError(err).Warnf("error getting text from page %d", no)
			continue
		}

		for _, row := range rows {
			var builder strings.Builder
			builder.Grow(len(row.Content) * 20)

			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}

			if builder.Len() > 0 {
				extractedRows = append(extractedRows, builder.String())
			}
		}
	}

	return &extractedRows, nil
}

func extractTextWithUniPDF(data []byte) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for no := 1; no <= numPages; no++ {
		page, err := reader.GetPage(no)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", no, err)
		}
		ex, err := unidoc.New(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", no, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", no, err)
		}
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// ExtractText returns the full text of a PDF, one extracted row per line.
func ExtractText(data []byte) (string, error) {
	rows, err := ExtractRowsFromPDFReader(bytes.NewReader(data))
	if err == nil && len(*rows) > 0 {
		return strings.Join(*rows, "\n"), nil
	}
	if err == nil {
		err = ErrNoText
	}

	if !uniPDFAvailable() {
		return "", err
	}

	log.WithError(err).Debug("primary pdf reader failed, retrying with unipdf")
	text, uniErr := extractTextWithUniPDF(data)
	if uniErr != nil {
		return "", fmt.Errorf("%v; unipdf: %w", err, uniErr)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func ExtractTextFromPDF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ExtractText(data)
}

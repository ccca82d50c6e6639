// Package document turns uploaded medical reports and kitchen photos into
// inputs for the analyzer.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PreviewLimit is the number of characters shown in a report preview.
const PreviewLimit = 3000

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize = 20 << 20

var (
	// ErrNoText means the document held no extractable text.
	ErrNoText = errors.New("could not extract text")
	// ErrUnsupportedType means the file extension is not a supported report type.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrUnsupportedImage means an image upload is not JPEG or PNG.
	ErrUnsupportedImage = errors.New("unsupported image type")
	// ErrTooLarge means an upload exceeds MaxUploadSize.
	ErrTooLarge = errors.New("file too large")
)

// Kind is the report file format.
type Kind string

const (
	KindText Kind = "txt"
	KindPDF  Kind = "pdf"
)

// Document is a loaded medical report.
type Document struct {
	Name  string `json:"name" yaml:"name"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Pages int    `json:"pages" yaml:"pages"`
	Size  int    `json:"size" yaml:"size"`
	Text  string `json:"-" yaml:"-"`
}

// Load reads a report from its uploaded bytes. The file name selects the
// format: .txt is read as UTF-8, .pdf has its text layer extracted page by page.
func Load(name string, data []byte) (*Document, error) {
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}

	doc := &Document{Name: filepath.Base(name), Size: len(data)}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".md":
		doc.Kind = KindText
		doc.Pages = 1
		doc.Text = decodeText(data)
	case ".pdf":
		doc.Kind = KindPDF
		pages, text, err := readPDF(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		doc.Pages = pages
		doc.Text = text
	default:
		return nil, fmt.Errorf("%s: %w (use .txt or .pdf)", name, ErrUnsupportedType)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNoText)
	}
	return doc, nil
}

// LoadFile reads a report from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(path, data)
}

// Preview returns the first PreviewLimit characters of the text, with "..."
// appended when truncated.
func (d *Document) Preview() string {
	return Truncate(d.Text, PreviewLimit)
}

// Truncate cuts s to n runes and appends "..." if anything was removed.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// readPDF validates the file with pdfcpu and extracts its plain text.
func readPDF(data []byte) (pages int, text string, err error) {
	pages, err = api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, "", fmt.Errorf("invalid PDF: %w", err)
	}

	// The text extractor panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to extract PDF text: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return 0, "", fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return pages, b.String(), nil
}

// Image is an uploaded kitchen photo.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// LoadImage validates a JPEG or PNG upload by extension and content.
func LoadImage(name string, data []byte) (Image, error) {
	if len(data) > MaxUploadSize {
		return Image{}, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	want, ok := imageTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return Image{}, fmt.Errorf("%s: %w (use jpg, jpeg or png)", name, ErrUnsupportedImage)
	}
	if got := http.DetectContentType(data); got != want {
		return Image{}, fmt.Errorf("%s: %w (content is %s)", name, ErrUnsupportedImage, got)
	}
	return Image{Name: filepath.Base(name), MIMEType: want, Data: data}, nil
}

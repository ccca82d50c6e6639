package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func TestLoad(t *testing.T) {
	t.Run("text report", func(t *testing.T) {
		doc, err := Load("labs.txt", []byte("HbA1c: 7.2%\nLDL: 130 mg/dL\n"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if doc.Kind != KindText || doc.Pages != 1 || doc.Name != "labs.txt" {
			t.Errorf("doc = %+v", doc)
		}
		if !strings.Contains(doc.Text, "LDL: 130") {
			t.Errorf("Text = %q", doc.Text)
		}
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		doc, err := Load("bom.txt", []byte("\xef\xbb\xbfGlucose 95"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if doc.Text != "Glucose 95" {
			t.Errorf("Text = %q", doc.Text)
		}
	})

	t.Run("extension is case-insensitive", func(t *testing.T) {
		if _, err := Load("/tmp/REPORT.TXT", []byte("x")); err != nil {
			t.Errorf("Load() error = %v", err)
		}
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := Load("empty.txt", []byte("  \n\t"))
		if !errors.Is(err, ErrNoText) {
			t.Errorf("Load() error = %v, want ErrNoText", err)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Load("scan.docx", []byte("x"))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Load() error = %v, want ErrUnsupportedType", err)
		}
	})

	t.Run("invalid pdf", func(t *testing.T) {
		_, err := Load("report.pdf", []byte("this is not a pdf"))
		if err == nil {
			t.Fatal("Load() expected error")
		}
		if errors.Is(err, ErrNoText) {
			t.Error("invalid PDF should not report ErrNoText")
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, err := Load("big.txt", make([]byte, MaxUploadSize+1))
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("Load() error = %v, want ErrTooLarge", err)
		}
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("Patient reports fatigue."), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if doc.Size != len("Patient reports fatigue.") {
		t.Errorf("Size = %d", doc.Size)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}

func TestPreview(t *testing.T) {
	short := &Document{Text: "short"}
	if got := short.Preview(); got != "short" {
		t.Errorf("Preview() = %q", got)
	}

	long := &Document{Text: strings.Repeat("a", PreviewLimit+10)}
	got := long.Preview()
	if len(got) != PreviewLimit+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("Preview() length = %d", len(got))
	}

	exact := &Document{Text: strings.Repeat("b", PreviewLimit)}
	if got := exact.Preview(); strings.HasSuffix(got, "...") {
		t.Error("text at the limit should not be truncated")
	}

	if got := Truncate("héllo", 2); got != "hé..." {
		t.Errorf("Truncate() = %q", got)
	}
}

func TestLoadImage(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantMIME string
		wantErr  error
	}{
		{"png", "fridge.png", pngHeader, "image/png", nil},
		{"jpeg", "pantry.JPG", jpegHeader, "image/jpeg", nil},
		{"jpeg extension", "pantry.jpeg", jpegHeader, "image/jpeg", nil},
		{"gif rejected", "anim.gif", []byte("GIF89a"), "", ErrUnsupportedImage},
		{"content mismatch", "fake.png", jpegHeader, "", ErrUnsupportedImage},
		{"text as image", "notes.jpg", []byte("hello"), "", ErrUnsupportedImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := LoadImage(tt.file, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadImage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadImage() error = %v", err)
			}
			if img.MIMEType != tt.wantMIME {
				t.Errorf("MIMEType = %q, want %q", img.MIMEType, tt.wantMIME)
			}
		})
	}
}

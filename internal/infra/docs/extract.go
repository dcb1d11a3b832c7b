// Package docs pulls plain text out of uploaded study material.
package docs

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	MaxUploadSize = 5 << 20
	MaxTextRunes  = 5000

	truncatedMarker = "\n...[truncated]"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds 5MB limit")
)

// Allowed reports whether the file name has an extension Extract can read.
func Allowed(name string) bool {
	switch ext(name) {
	case "txt", "pdf", "docx", "pptx":
		return true
	}
	return false
}

func ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Extract reads at most MaxUploadSize bytes from r and returns its text, cut at MaxTextRunes.
func Extract(name string, r io.Reader) (string, error) {
	if !Allowed(name) {
		return "", ErrUnsupportedType
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	var text string
	switch ext(name) {
	case "txt":
		text = strings.ToValidUTF8(string(data), "")
	case "pdf":
		text, err = pdfText(data)
	case "docx":
		text, err = docxText(data)
	case "pptx":
		text, err = pptxText(data)
	}
	if err != nil {
		return "", err
	}
	return truncate(strings.TrimSpace(text)), nil
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxTextRunes]) + truncatedMarker)
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return xmlText(f, "t", "p")
		}
	}
	return "", errors.New("docx: missing word/document.xml")
}

func pptxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}

	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		name := f.Name
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{n, f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		text, err := xmlText(s.f, "t", "p")
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// xmlText concatenates the character data of every textTag element, ending a line at each
// closing paraTag. Namespace prefixes are ignored.
func xmlText(f *zip.File, textTag, paraTag string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		b      strings.Builder
		inText bool
		line   bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", f.Name, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == textTag {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case textTag:
				inText = false
			case paraTag:
				if line {
					b.WriteByte('\n')
					line = false
				}
			}
		case xml.CharData:
			if inText {
				b.Write(el)
				line = true
			}
		}
	}
	return b.String(), nil
}

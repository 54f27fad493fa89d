package readers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// preview streams carrying the plain-text rendition of an HWP document.
var hwpPreviewStreams = map[string]bool{
	"PrvText":     true,
	"PreviewText": true,
	"PrvTextUTF":  true,
}

// HWPReader reads the preview text stream of an HWP (OLE compound) document.
type HWPReader struct{}

func NewHWPReader() *HWPReader { return &HWPReader{} }

func (r *HWPReader) ReadGrids(_ context.Context, path string) ([]Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hwp: %w", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("parse compound file: %w", err)
	}

	var text string
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !hwpPreviewStreams[entry.Name] || !previewParent(entry.Path) {
			continue
		}
		data, rerr := io.ReadAll(entry)
		if rerr != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name, rerr)
		}
		text = decodePreview(data)
		break
	}
	if text == "" {
		return nil, fmt.Errorf("no preview text stream")
	}

	rows := linesToRows(splitPreviewLines(text))
	return []Grid{{Label: filepath.Base(path), Rows: rows}}, nil
}

// previewParent accepts streams at the root or under BodyText.
func previewParent(path []string) bool {
	switch len(path) {
	case 0:
		return true
	case 1:
		return path[0] == "BodyText" || path[0] == "Root Entry"
	default:
		return false
	}
}

// decodePreview tries UTF-16LE, then UTF-8, then CP949.
func decodePreview(data []byte) string {
	if len(data)%2 == 0 && bytes.IndexByte(data, 0) >= 0 {
		if out, err := utf16LE.NewDecoder().Bytes(data); err == nil {
			return strings.TrimRight(string(out), "\x00")
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}
	if out, err := korean.EUCKR.NewDecoder().Bytes(data); err == nil {
		return string(out)
	}
	return strings.ToValidUTF8(string(data), "")
}

// splitPreviewLines breaks preview text into lines. Table cells appear as
// "<cell><cell>" runs; those become tab-separated.
func splitPreviewLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		t := strings.TrimSpace(ln)
		if strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">") {
			t = strings.TrimSuffix(strings.TrimPrefix(t, "<"), ">")
			lines[i] = strings.ReplaceAll(t, "><", "\t")
		}
	}
	return lines
}

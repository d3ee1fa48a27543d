// Package browse is the interactive file and directory browser behind the
// browse command. It turns a path into list items, renders them with one
// template per item kind, and keeps a status bar in sync with the pointer.
package browse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/listview/pkg/config"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
	"github.com/Sumatoshi-tech/listview/pkg/textutil"
)

// Template identifiers.
const (
	TemplateLine  = "line"
	TemplateCode  = "code"
	TemplateEntry = "entry"
)

const (
	parentEntry = ".."
	plainText   = "Text"
)

// Sentinel errors.
var (
	ErrBinary   = errors.New("binary file")
	ErrTooLarge = errors.New("file too large")
)

// Line is one logical element of a document: a source line or a directory
// entry.
type Line struct {
	Number   int
	Text     string
	Cells    []surface.Cell
	Template string

	// Directory entries only.
	Dir  bool
	Size int64
}

// Document is a loaded path.
type Document struct {
	Path     string
	Language string
	Dir      bool
	Bytes    int64
	Lines    []Line
}

// Load reads path. Files become one line per source line, highlighted when
// the language is known. Directories become a ".." entry followed by one
// entry per child, directories first.
func Load(path string, cfg config.BrowseConfig) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return loadDir(path)
	}

	if cfg.MaxFile > 0 && info.Size() > cfg.MaxFile {
		return nil, fmt.Errorf("%w: %s is %s, limit %s", ErrTooLarge, path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(cfg.MaxFile)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return FromBytes(path, data, cfg)
}

// FromBytes builds a file document from data. path is used for language
// detection and display only.
func FromBytes(path string, data []byte, cfg config.BrowseConfig) (*Document, error) {
	if textutil.IsBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, path)
	}

	doc := &Document{
		Path:     path,
		Language: enry.GetLanguage(filepath.Base(path), data),
		Bytes:    int64(len(data)),
	}

	texts := textutil.SplitLines(data)
	for i, text := range texts {
		texts[i] = textutil.ExpandTabs(text, cfg.TabWidth)
	}

	template := TemplateLine

	var cells [][]surface.Cell

	if doc.Language != "" && doc.Language != plainText {
		var ok bool

		cells, ok = NewHighlighter(cfg.Style).Highlight(doc.Language, texts)
		if ok {
			template = TemplateCode
		}
	}

	doc.Lines = make([]Line, len(texts))

	for i, text := range texts {
		var row []surface.Cell
		if cells != nil {
			row = cells[i]
		} else {
			row = cellsOf(text, tcell.StyleDefault)
		}

		doc.Lines[i] = Line{Number: i + 1, Text: text, Cells: row, Template: template}
	}

	return doc, nil
}

func loadDir(path string) (*Document, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	doc := &Document{Path: path, Dir: true}

	for _, e := range entries {
		line := Line{Text: e.Name(), Template: TemplateEntry, Dir: e.IsDir()}

		if info, infoErr := e.Info(); infoErr == nil && !e.IsDir() {
			line.Size = info.Size()
			doc.Bytes += info.Size()
		}

		doc.Lines = append(doc.Lines, line)
	}

	slices.SortFunc(doc.Lines, func(a, b Line) int {
		if a.Dir != b.Dir {
			if a.Dir {
				return -1
			}

			return 1
		}

		return strings.Compare(a.Text, b.Text)
	})

	doc.Lines = slices.Insert(doc.Lines, 0, Line{Text: parentEntry, Template: TemplateEntry, Dir: true})

	for i := range doc.Lines {
		doc.Lines[i].Number = i + 1
	}

	return doc, nil
}

// Summary describes the document for the status bar.
func (d *Document) Summary() string {
	if d.Dir {
		return fmt.Sprintf("%s  %s entries  %s", d.Path, humanize.Comma(int64(len(d.Lines))), humanize.IBytes(uint64(d.Bytes)))
	}

	lang := d.Language
	if lang == "" {
		lang = "text"
	}

	return fmt.Sprintf("%s  %s  %s lines  %s", d.Path, lang, humanize.Comma(int64(len(d.Lines))), humanize.IBytes(uint64(d.Bytes)))
}

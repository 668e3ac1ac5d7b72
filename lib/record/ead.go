package record

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/text"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/xmltree"
)

const (
	NotesField = "notes"
	TitleField = "title"

	eadContextWindow = 10
)

// EAD is a finding aid.
type EAD struct {
	EADID           string    `json:"eadid"`
	Bibnumber       string    `json:"bibnumber"`
	CollectionTitle string    `json:"collection_title"`
	Notes           TextField `json:"notes"`
	Title           TextField `json:"title"`
}

func (e *EAD) Format() Format {
	return EADFormat
}

func (e *EAD) ID() string {
	return e.EADID
}

func (e *EAD) TextFields() []TextField {
	return []TextField{e.Notes, e.Title}
}

func (e *EAD) Metadata() []string {
	return []string{e.EADID, e.Bibnumber, e.CollectionTitle}
}

type eadExtractor struct {
	opts Options
}

func (x *eadExtractor) Format() Format {
	return EADFormat
}

func (x *eadExtractor) ContextWindow() int {
	return eadContextWindow
}

// Load parses every regular file below the directory at path, in lexical order. Files that are not well-formed
// XML are logged and skipped.
func (x *eadExtractor) Load(path string) ([]Raw, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("EAD directory %s: %w", path, lib.ErrSourceNotFound)
	} else if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: EAD path %s is not a directory", lib.ErrInvalidInput, path)
	}

	var raws []Raw
	err = filepath.WalkDir(path, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		parsed, err := x.Parse(file, f)
		if err != nil {
			var malformed *lib.MalformedRecordError
			if errors.As(err, &malformed) {
				log.Warn().Err(err).Str("source", file).Msg("skipping malformed EAD file")
				return nil
			}
			return err
		}
		raws = append(raws, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Int("records", len(raws)).Msg("loaded EAD files")
	return raws, nil
}

func (x *eadExtractor) Parse(source string, r io.Reader) ([]Raw, error) {
	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, &lib.MalformedRecordError{Source: source, Err: err}
	}
	return []Raw{{Source: source, Root: root}}, nil
}

func (x *eadExtractor) Extract(raw Raw) (Record, error) {
	root := raw.Root

	eadid := root.Find("eadid")
	if eadid == nil {
		return nil, &lib.MalformedRecordError{Source: raw.Source, Err: errors.New("no eadid element")}
	}

	record := &EAD{
		EADID:           strings.TrimSpace(eadid.Text()),
		Bibnumber:       Null,
		CollectionTitle: Null,
	}

	if num := root.FindWithAttr("num", "type", x.opts.BibnumberType); num != nil {
		record.Bibnumber = strings.TrimSpace(num.Text())
	}

	if title := root.Path("archdesc", "did", "unittitle"); title != nil {
		record.CollectionTitle = text.StripEscapes(text.CollapseWhitespace(title.Text()))
	}

	// descriptive notes: whitespace collapsed before escaped newlines are flattened
	if paragraphs := root.FindAll("p"); len(paragraphs) > 0 {
		record.Notes = TextField{
			Type:    NotesField,
			Text:    text.FlattenNewlines(text.CollapseWhitespace(joinText(paragraphs))),
			Present: true,
		}
	} else {
		record.Notes = TextField{Type: NotesField}
	}

	if titles := root.FindAll("unittitle"); len(titles) > 0 {
		record.Title = TextField{
			Type:    TitleField,
			Text:    text.FlattenNewlines(joinText(titles)),
			Present: true,
		}
	} else {
		record.Title = TextField{Type: TitleField}
	}

	return record, nil
}

func joinText(nodes []*xmltree.Node) string {
	texts := make([]string, len(nodes))
	for i, node := range nodes {
		texts[i] = node.Text()
	}
	return strings.Join(texts, " ")
}

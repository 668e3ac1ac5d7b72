package record

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/text"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/xmltree"
)

const (
	SummaryField = "summary"
	BionoteField = "bionote"
)

// MARC is a bibliographic record. Missing metadata fields hold Null.
type MARC struct {
	BibNum     string    `json:"bib_num"`
	OCLCNum    string    `json:"oclc_num"`
	LastUpdate string    `json:"last_update"`
	Creator    string    `json:"creator"`
	Title      string    `json:"title"`
	Extent     string    `json:"extent"`
	Summary    TextField `json:"summary"`
	Bionote    TextField `json:"bionote"`
}

func (m *MARC) Format() Format {
	return MARCFormat
}

func (m *MARC) ID() string {
	return m.BibNum
}

func (m *MARC) TextFields() []TextField {
	return []TextField{m.Summary, m.Bionote}
}

func (m *MARC) Metadata() []string {
	return []string{m.OCLCNum, m.BibNum, m.LastUpdate, m.Creator, m.Title, m.Extent}
}

type marcExtractor struct{}

func (x *marcExtractor) Format() Format {
	return MARCFormat
}

func (x *marcExtractor) ContextWindow() int {
	return WholeField
}

// Load reads every record element of the MARCXML file at path. A file that is not well-formed XML fails as a whole.
func (x *marcExtractor) Load(path string) ([]Raw, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("MARCXML file %s: %w", path, lib.ErrSourceNotFound)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	raws, err := x.Parse(path, f)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Int("records", len(raws)).Msg("loaded MARCXML records")
	return raws, nil
}

func (x *marcExtractor) Parse(source string, r io.Reader) ([]Raw, error) {
	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, &lib.MalformedRecordError{Source: source, Err: err}
	}

	records := root.FindAll("record")
	raws := make([]Raw, len(records))
	for i, record := range records {
		raws[i] = Raw{Source: fmt.Sprintf("%s:record[%d]", source, i+1), Root: record}
	}
	return raws, nil
}

func (x *marcExtractor) Extract(raw Raw) (Record, error) {
	root := raw.Root
	record := &MARC{
		BibNum:     controlField(root, "001"),
		OCLCNum:    Null,
		LastUpdate: controlField(root, "005"),
		Creator:    Null,
		Title:      Null,
		Extent:     Null,
	}

	// only the first 035 is consulted for the OCLC number
	if fields := dataFields(root, "035"); len(fields) > 0 {
		if subfield := fields[0].FindWithAttr("subfield", "code", "a"); subfield != nil {
			record.OCLCNum = strings.TrimSpace(subfield.Text())
		}
	}

	for _, tag := range []string{"100", "110"} {
		if creator := firstPopulated(dataFields(root, tag)); creator != "" {
			record.Creator = creator
			break
		}
	}

	if title, ok := joinFields(root, "245"); ok {
		record.Title = title
	}
	if extent, ok := joinFields(root, "300"); ok {
		record.Extent = extent
	}

	summary, ok := joinFields(root, "520")
	record.Summary = TextField{Type: SummaryField, Text: summary, Present: ok}
	bionote, ok := joinFields(root, "545")
	record.Bionote = TextField{Type: BionoteField, Text: bionote, Present: ok}

	return record, nil
}

func controlField(root *xmltree.Node, tag string) string {
	if field := root.FindWithAttr("controlfield", "tag", tag); field != nil {
		return strings.TrimSpace(field.Text())
	}
	return Null
}

func dataFields(root *xmltree.Node, tag string) []*xmltree.Node {
	var fields []*xmltree.Node
	for _, field := range root.FindAll("datafield") {
		if t, ok := field.Attr("tag"); ok && t == tag {
			fields = append(fields, field)
		}
	}
	return fields
}

// firstPopulated returns the text of the first field that is not blank.
func firstPopulated(fields []*xmltree.Node) string {
	for _, field := range fields {
		if value := strings.TrimSpace(text.FlattenLineBreaks(field.Text())); value != "" {
			return value
		}
	}
	return ""
}

// joinFields joins every instance of a data field, each trimmed, with single spaces. ok is false when the
// record has no instance of the field.
func joinFields(root *xmltree.Node, tag string) (string, bool) {
	fields := dataFields(root, tag)
	if len(fields) == 0 {
		return "", false
	}
	values := make([]string, len(fields))
	for i, field := range fields {
		values[i] = strings.TrimSpace(field.Text())
	}
	return text.FlattenLineBreaks(strings.Join(values, " ")), true
}

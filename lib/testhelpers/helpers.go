package testhelpers

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Lexicons is a small lexicon table with one restricted column.
const Lexicons = `Slurs,Outdated,HateBaseFull
bad word,olden term,awful
term1,,
,Native Americans,
`

// ScenarioLexicons has a short second column.
const ScenarioLexicons = `Slurs,Outdated
term1,wordA
term2,
`

// WriteFile writes content to dir/name, creating parent directories, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
	return path
}

// EAD returns a minimal finding aid. Empty bibnumber leaves out the num element.
func EAD(eadid, bibnumber, title, note string) string {
	var num string
	if bibnumber != "" {
		num = fmt.Sprintf(`<num type="aleph">%s</num>`, bibnumber)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ead xmlns="urn:isbn:1-931666-22-9">
  <eadheader>
    <eadid>%s</eadid>
    <filedesc><titlestmt><titleproper>Guide</titleproper></titlestmt></filedesc>
  </eadheader>
  <archdesc level="collection">
    <did>
      <unittitle>%s</unittitle>
      %s
    </did>
    <scopecontent>
      <p>%s</p>
    </scopecontent>
  </archdesc>
</ead>
`, eadid, title, num, note)
}

func ControlField(tag, value string) string {
	return fmt.Sprintf(`<controlfield tag="%s">%s</controlfield>`, tag, value)
}

func DataField(tag, code, value string) string {
	return fmt.Sprintf(`<datafield tag="%s" ind1=" " ind2=" "><subfield code="%s">%s</subfield></datafield>`, tag, code, value)
}

func MARCRecord(fields ...string) string {
	return "<record>" + strings.Join(fields, "") + "</record>"
}

func MARCCollection(records ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<collection xmlns="http://www.loc.gov/MARC21/slim">` + strings.Join(records, "\n") + "</collection>\n"
}

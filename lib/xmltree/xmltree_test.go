package xmltree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `<?xml version="1.0" encoding="UTF-8"?>
<ead xmlns="urn:isbn:1-931666-22-9">
  <eadheader><eadid>GB-0001</eadid></eadheader>
  <archdesc>
    <did>
      <unittitle>Papers of <emph>Jane</emph> Doe</unittitle>
      <num type="other">1</num>
      <num type="aleph">000123</num>
    </did>
    <dsc><c><did><unittitle>Letters</unittitle></did></c></dsc>
  </archdesc>
</ead>`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(document))
	require.NoError(t, err)

	assert.Equal(t, "ead", root.Local())
	assert.Nil(t, root.Parent)
	assert.Len(t, root.Children, 2)

	assert.Equal(t, "GB-0001", root.Find("eadid").Text())
	assert.Equal(t, "Papers of Jane Doe", root.Path("archdesc", "did", "unittitle").Text())
	assert.Nil(t, root.Path("archdesc", "missing"))

	titles := root.FindAll("unittitle")
	require.Len(t, titles, 2)
	assert.Equal(t, "Letters", titles[1].Text())
	assert.Equal(t, "did", titles[1].Parent.Local())

	num := root.FindWithAttr("num", "type", "aleph")
	require.NotNil(t, num)
	assert.Equal(t, "000123", num.Text())
	assert.Nil(t, root.FindWithAttr("num", "type", "isbn"))

	value, ok := num.Attr("type")
	assert.True(t, ok)
	assert.Equal(t, "aleph", value)
	_, ok = num.Attr("missing")
	assert.False(t, ok)

	assert.Nil(t, root.Find("bibnumber"))
	assert.Len(t, root.FindAll("ead"), 1)
}

func TestParseEncoding(t *testing.T) {
	latin1 := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><p>caf\xe9</p>"
	root, err := Parse(strings.NewReader(latin1))
	require.NoError(t, err)
	assert.Equal(t, "café", root.Text())
}

func TestParseHTMLEntities(t *testing.T) {
	root, err := Parse(strings.NewReader("<p>term1&nbsp;here &amp; &eacute;t&eacute;</p>"))
	require.NoError(t, err)
	assert.Equal(t, "term1\u00a0here & \u00e9t\u00e9", root.Text())
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{
		"",
		"not xml at all",
		"<ead><eadid>unclosed</ead>",
		"<ead>",
		"<a/><b/>",
		"<a>&undefined;</a>",
	} {
		_, err := Parse(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
	h "gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/testhelpers"
)

type fixture struct {
	lexicons string
	output   string
	ead      string
	marc     string
}

func newFixture(t *testing.T) fixture {
	dir := t.TempDir()
	output := filepath.Join(dir, "reports")
	require.NoError(t, os.Mkdir(output, 0755))

	ead := filepath.Join(dir, "ead")
	h.WriteFile(t, ead, "gb-0001.xml", h.EAD("GB-0001", "b1234", "Papers", "This collection contains term1 materials."))
	h.WriteFile(t, ead, "nested/gb-0002.xml", h.EAD("GB-0002", "", "Letters", "Nothing of note."))

	marc := h.WriteFile(t, dir, "records.xml", h.MARCCollection(
		h.MARCRecord(
			h.ControlField("001", "b5678"),
			h.ControlField("005", "20220101"),
			h.DataField("035", "a", "(OCoLC)42"),
			h.DataField("100", "a", "Someone"),
			h.DataField("245", "a", "Diaries"),
			h.DataField("520", "a", "Diaries naming term2 often."),
		),
	))

	return fixture{
		lexicons: h.WriteFile(t, dir, "lexicons.csv", h.ScenarioLexicons),
		output:   output,
		ead:      ead,
		marc:     marc,
	}
}

func (f fixture) config() auditConfig {
	var config auditConfig
	config.Lexicon.Path = f.lexicons
	config.Lexicon.Selection = lexicon.All
	config.RestrictedLexicons = lexicon.DefaultRestricted
	config.OutputPath = f.output
	config.EADPath = f.ead
	config.MARCXMLPath = f.marc
	config.PhraseStore = cache.Local
	config.Workers = 1
	config.Record = record.DefaultOptions
	return config
}

func readReport(t *testing.T, path string) [][]string {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestApplyArgs(t *testing.T) {
	var config auditConfig
	config.EADPath = "ead"
	config.MARCXMLPath = "marc.xml"

	err := applyArgs(&config, []string{"lexicons.csv", "Slurs_Outdated", "1", "out"})
	require.NoError(t, err)

	assert.Equal(t, "lexicons.csv", config.Lexicon.Path)
	assert.Equal(t, "Slurs_Outdated", config.Lexicon.Selection)
	assert.True(t, config.Lexicon.IncludeRestricted)
	assert.Equal(t, "out", config.OutputPath)
	// not overridden
	assert.Equal(t, "ead", config.EADPath)
	assert.Equal(t, "marc.xml", config.MARCXMLPath)
}

func TestApplyArgsInvalidRestrictedFlag(t *testing.T) {
	var config auditConfig
	err := applyArgs(&config, []string{"lexicons.csv", "ALL", "maybe"})
	assert.ErrorIs(t, err, lib.ErrInvalidInput)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		modify func(*auditConfig)
		err    error
	}{
		{"valid", func(*auditConfig) {}, nil},
		{"ead only", func(c *auditConfig) { c.MARCXMLPath = None }, nil},
		{"marc only", func(c *auditConfig) { c.EADPath = None }, nil},
		{"missing lexicon", func(c *auditConfig) { c.Lexicon.Path = filepath.Join(f.output, "absent.csv") }, lib.ErrSourceNotFound},
		{"lexicon is a directory", func(c *auditConfig) { c.Lexicon.Path = f.output }, lib.ErrSourceNotFound},
		{"output is a file", func(c *auditConfig) { c.OutputPath = f.lexicons }, lib.ErrInvalidInput},
		{"no archive", func(c *auditConfig) { c.EADPath, c.MARCXMLPath = None, None }, lib.ErrInvalidInput},
		{"same archive paths", func(c *auditConfig) { c.EADPath = c.MARCXMLPath }, lib.ErrInvalidInput},
		{"missing ead", func(c *auditConfig) { c.EADPath = filepath.Join(f.ead, "absent") }, lib.ErrSourceNotFound},
		{"ead is a file", func(c *auditConfig) { c.EADPath = f.lexicons }, lib.ErrInvalidInput},
		{"missing marc", func(c *auditConfig) { c.MARCXMLPath = filepath.Join(f.ead, "absent.xml") }, lib.ErrSourceNotFound},
		{"marc is a directory", func(c *auditConfig) { c.MARCXMLPath = f.output }, lib.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := f.config()
			tt.modify(&config)
			err := validate(config)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestValidateMessages(t *testing.T) {
	f := newFixture(t)
	config := f.config()
	config.EADPath, config.MARCXMLPath = None, None

	err := validate(config)
	assert.EqualError(t, err, "path to at least one archival structure must be specified: invalid input")
}

func TestRun(t *testing.T) {
	f := newFixture(t)

	reports, err := run(f.config())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(f.output, "EAD_ALL_noHB_nlp_report.csv"),
		filepath.Join(f.output, "MARCXML_ALL_noHB_nlp_report.csv"),
	}, reports)

	assert.Equal(t, [][]string{
		{"eadid", "bibnumber", "collection_title", "match_type", "match_term", "context_snippet", "match_rule"},
		{"GB-0001", "b1234", "Papers", "notes", "term1", "This collection contains term1 materials.", "Slurs"},
	}, readReport(t, reports[0]))

	assert.Equal(t, [][]string{
		{"oclc_num", "bibnumber", "last_update", "creator", "title", "extent", "match_type", "terms", "context_snippets", "rule_ids"},
		{"(OCoLC)42", "b5678", "20220101", "Someone", "Diaries", "NULL", "summary", "term2", "Diaries naming term2 often.", "Slurs"},
	}, readReport(t, reports[1]))
}

func TestRunSkipsNone(t *testing.T) {
	f := newFixture(t)
	config := f.config()
	config.EADPath = None
	config.Lexicon.Selection = "Outdated"

	reports, err := run(config)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	// no record matches, only the header is written
	rows := readReport(t, reports[0])
	assert.Len(t, rows, 1)
	assert.Equal(t, filepath.Join(f.output, "MARCXML_Outdated_noHB_nlp_report.csv"), reports[0])
}

func TestRunBlocklist(t *testing.T) {
	f := newFixture(t)
	config := f.config()
	config.MARCXMLPath = None
	config.Blocklist = h.WriteFile(t, f.output, "blocklist.yml", "case_insensitive:\n  - TERM1\n")

	reports, err := run(config)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Len(t, readReport(t, reports[0]), 1)
}

func TestRunUnknownSelection(t *testing.T) {
	f := newFixture(t)
	config := f.config()
	config.Lexicon.Selection = "Missing"

	_, err := run(config)
	var columnErr *lib.InvalidColumnError
	assert.ErrorAs(t, err, &columnErr)
}

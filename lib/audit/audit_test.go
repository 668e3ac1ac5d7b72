package audit

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/testhelpers"
)

var scenarioSet = &lexicon.Set{
	Lexicons: []lexicon.Lexicon{
		{Name: "Slurs", Phrases: []string{"term1", "term2"}},
		{Name: "Outdated", Phrases: []string{"wordA", "term2 materials"}},
	},
}

type AuditSuite struct {
	suite.Suite
	matcher *matcher.Matcher
	ead     record.Extractor
	marc    record.Extractor
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) SetupSuite() {
	m, err := matcher.Compile(scenarioSet)
	s.Require().NoError(err)
	s.matcher = m

	s.ead, err = record.NewExtractor(record.EADFormat, record.DefaultOptions)
	s.Require().NoError(err)
	s.marc, err = record.NewExtractor(record.MARCFormat, record.DefaultOptions)
	s.Require().NoError(err)
}

func (s *AuditSuite) eadRaws(documents ...string) []record.Raw {
	var raws []record.Raw
	for i, document := range documents {
		parsed, err := s.ead.Parse(fmt.Sprintf("ead-%d.xml", i), strings.NewReader(document))
		s.Require().NoError(err)
		raws = append(raws, parsed...)
	}
	return raws
}

func (s *AuditSuite) TestEADScenario() {
	auditor := New(s.matcher, s.ead)
	annotated, err := auditor.Build(s.eadRaws(testhelpers.EAD("GB-0001", "", "Papers", "This collection contains term1 materials.")))
	s.Require().NoError(err)
	s.Require().Len(annotated, 1)

	s.Equal([]MatchResult{{
		Type:            record.NotesField,
		Terms:           []string{"term1"},
		ContextSnippets: []string{"This collection contains term1 materials."},
		RuleIDs:         []string{"Slurs"},
	}}, annotated[0].Results)
	s.Equal("GB-0001", annotated[0].Record.ID())
}

func (s *AuditSuite) TestEADContextWindow() {
	words := make([]string, 30)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	words[15] = "term1"
	words[2] = "wordA"

	auditor := New(s.matcher, s.ead)
	annotated, err := auditor.Build(s.eadRaws(testhelpers.EAD("GB-0002", "", "Papers", strings.Join(words, " "))))
	s.Require().NoError(err)
	s.Require().Len(annotated, 1)

	result := annotated[0].Results[0]
	s.Equal([]string{"wordA", "term1"}, result.Terms)
	s.Equal([]string{"Outdated", "Slurs"}, result.RuleIDs)
	// clipped at the start of the field
	s.Equal(strings.Join(words[0:13], " "), result.ContextSnippets[0])
	s.Equal(strings.Join(words[5:26], " "), result.ContextSnippets[1])
}

func (s *AuditSuite) TestMatchFieldsOverlapsAndTitles() {
	auditor := New(s.matcher, s.ead)
	annotated, err := auditor.Build(s.eadRaws(testhelpers.EAD("GB-0003", "", "Term2 materials", "Nothing here.")))
	s.Require().NoError(err)
	s.Require().Len(annotated, 1)

	s.Equal([]MatchResult{{
		Type:            record.TitleField,
		Terms:           []string{"Term2", "Term2 materials"},
		ContextSnippets: []string{"Term2 materials", "Term2 materials"},
		RuleIDs:         []string{"Slurs", "Outdated"},
	}}, annotated[0].Results)
}

func (s *AuditSuite) TestMatchFieldsMARCWholeField() {
	auditor := New(s.matcher, s.marc)
	rec := &record.MARC{
		Summary: record.TextField{Type: record.SummaryField, Text: "A long summary mentioning term2 in passing.", Present: true},
		Bionote: record.TextField{Type: record.BionoteField, Text: "term1", Present: true},
	}

	annotated, err := auditor.MatchFields(rec)
	s.Require().NoError(err)
	s.Require().NotNil(annotated)
	s.Equal([]MatchResult{
		{
			Type:            record.SummaryField,
			Terms:           []string{"term2"},
			ContextSnippets: []string{"A long summary mentioning term2 in passing."},
			RuleIDs:         []string{"Slurs"},
		},
		{
			Type:            record.BionoteField,
			Terms:           []string{"term1"},
			ContextSnippets: []string{"term1"},
			RuleIDs:         []string{"Slurs"},
		},
	}, annotated.Results)
}

func (s *AuditSuite) TestMatchFieldsAbsentFieldsAreNotMatched() {
	auditor := New(s.matcher, s.marc)
	rec := &record.MARC{
		Summary: record.TextField{Type: record.SummaryField, Text: "term1", Present: false},
		Bionote: record.TextField{Type: record.BionoteField},
	}

	annotated, err := auditor.MatchFields(rec)
	s.NoError(err)
	s.Nil(annotated)
}

func (s *AuditSuite) TestMatchFieldsCeiling() {
	auditor := New(s.matcher, s.marc)

	atCeiling := "term1" + strings.Repeat(" ", MaxFieldLength-5)
	s.Require().Len(atCeiling, MaxFieldLength)
	annotated, err := auditor.MatchFields(&record.MARC{
		Summary: record.TextField{Type: record.SummaryField, Text: atCeiling, Present: true},
	})
	s.Require().NoError(err)
	s.Require().NotNil(annotated)
	s.Equal([]string{"term1"}, annotated.Results[0].Terms)
	s.Equal(record.SummaryField, annotated.Results[0].Type)

	overCeiling := atCeiling + " "
	annotated, err = auditor.MatchFields(&record.MARC{
		Summary: record.TextField{Type: record.SummaryField, Text: overCeiling, Present: true},
	})
	s.Require().NoError(err)
	s.Require().NotNil(annotated)
	s.Equal([]MatchResult{{
		Type:            "summary_exception",
		Terms:           []string{OverflowMessage},
		ContextSnippets: []string{""},
		RuleIDs:         []string{""},
	}}, annotated.Results)
}

func (s *AuditSuite) TestMatchFieldsCeilingCountsCharacters() {
	auditor := New(s.matcher, s.marc)

	// two bytes per character, under the ceiling in characters
	text := "term1 " + strings.Repeat("é", MaxFieldLength-6)
	annotated, err := auditor.MatchFields(&record.MARC{
		Bionote: record.TextField{Type: record.BionoteField, Text: text, Present: true},
	})
	s.Require().NoError(err)
	s.Require().NotNil(annotated)
	s.Equal(record.BionoteField, annotated.Results[0].Type)
}

func (s *AuditSuite) TestBuildDropsRecordsWithoutMatchesAndKeepsOrder() {
	raws := s.eadRaws(
		testhelpers.EAD("GB-A", "", "Papers", "term1"),
		testhelpers.EAD("GB-B", "", "Papers", "nothing"),
		testhelpers.EAD("GB-C", "", "Papers", "wordA"),
		`<ead><archdesc><p>term1 without an id</p></archdesc></ead>`,
		testhelpers.EAD("GB-D", "", "term2", ""),
	)

	auditor := New(s.matcher, s.ead)
	annotated, err := auditor.Build(raws)
	s.Require().NoError(err)

	var ids []string
	for _, a := range annotated {
		ids = append(ids, a.Record.ID())
		for _, result := range a.Results {
			s.Equal(len(result.Terms), len(result.ContextSnippets))
			s.Equal(len(result.Terms), len(result.RuleIDs))
		}
	}
	s.Equal([]string{"GB-A", "GB-C", "GB-D"}, ids)

	again, err := auditor.Build(raws)
	s.Require().NoError(err)
	s.Equal(annotated, again)
}

func (s *AuditSuite) TestBuildWorkers() {
	var documents []string
	for i := 0; i < 25; i++ {
		note := "nothing"
		if i%3 == 0 {
			note = "term1 and term2 materials"
		}
		documents = append(documents, testhelpers.EAD(fmt.Sprintf("GB-%02d", i), "", "Papers", note))
	}
	raws := s.eadRaws(documents...)

	sequential, err := New(s.matcher, s.ead).Build(raws)
	s.Require().NoError(err)
	parallel, err := New(s.matcher, s.ead, WithWorkers(4)).Build(raws)
	s.Require().NoError(err)

	s.Len(sequential, 9)
	s.Equal(sequential, parallel)
}

func (s *AuditSuite) TestBuildStoreErrorAborts() {
	pipe := &testhelpers.GetPipeline{}
	pipe.On("Get", mock.Anything).Return()
	pipe.On("ExecGet").Return(errors.New("connection refused"))
	client := &testhelpers.RemoteClient{}
	client.On("NewGetPipeline", mock.Anything).Return(pipe)

	m, err := matcher.Compile(scenarioSet, matcher.WithRemoteStore(client, 0))
	s.Require().NoError(err)

	raws := s.eadRaws(testhelpers.EAD("GB-A", "", "Papers", "term1"))
	_, err = New(m, s.ead).Build(raws)
	s.Error(err)
}

func (s *AuditSuite) TestBlocklist() {
	bl := &blocklist.Blocklist{CaseInsensitive: map[string]bool{"term1": true}}
	auditor := New(s.matcher, s.ead, WithBlocklist(bl))

	annotated, err := auditor.Build(s.eadRaws(testhelpers.EAD("GB-A", "", "Papers", "Term1 and wordA")))
	s.Require().NoError(err)
	s.Require().Len(annotated, 1)
	s.Equal([]string{"wordA"}, annotated[0].Results[0].Terms)
}

func (s *AuditSuite) TestAudit() {
	dir := s.T().TempDir()
	testhelpers.WriteFile(s.T(), dir, "a.xml", testhelpers.EAD("GB-A", "1", "Papers", "term1"))
	testhelpers.WriteFile(s.T(), dir, "b.xml", "not xml")

	annotated, err := New(s.matcher, s.ead).Audit(dir)
	s.Require().NoError(err)
	s.Require().Len(annotated, 1)
	s.Equal([]string{"GB-A", "1", "Papers"}, annotated[0].Record.Metadata())
}

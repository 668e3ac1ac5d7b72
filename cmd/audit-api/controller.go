package main

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/audit"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
)

type lexiconSummary struct {
	Name    string `json:"name"`
	Phrases int    `json:"phrases"`
}

type controller struct {
	lexicons   *lexicon.Set
	matcher    *matcher.Matcher
	extractors map[record.Format]record.Extractor
	auditors   map[record.Format]*audit.Auditor
}

func newController(set *lexicon.Set, m *matcher.Matcher, opts record.Options, auditOpts ...audit.Option) (controller, error) {
	c := controller{
		lexicons:   set,
		matcher:    m,
		extractors: map[record.Format]record.Extractor{},
		auditors:   map[record.Format]*audit.Auditor{},
	}
	for _, format := range []record.Format{record.EADFormat, record.MARCFormat} {
		extractor, err := record.NewExtractor(format, opts)
		if err != nil {
			return c, err
		}
		c.extractors[format] = extractor
		c.auditors[format] = audit.New(m, extractor, auditOpts...)
	}
	return c, nil
}

// ListLexicons summarises the lexicons in rule order.
func (c controller) ListLexicons() []lexiconSummary {
	rules := c.matcher.Rules()
	summaries := make([]lexiconSummary, 0, len(rules))
	for _, rule := range rules {
		lex, ok := c.lexicons.Get(rule)
		if !ok {
			continue
		}
		summaries = append(summaries, lexiconSummary{Name: lex.Name, Phrases: len(lex.Phrases)})
	}
	return summaries
}

// Match applies the matcher to text, which is held to the same length limit as record fields.
func (c controller) Match(text string) ([]matcher.Match, error) {
	if utf8.RuneCountInString(text) > audit.MaxFieldLength {
		return nil, NewHttpError(http.StatusRequestEntityTooLarge, errors.New(audit.OverflowMessage))
	}
	return c.matcher.Apply(text)
}

// AuditDocument audits the records of a single EAD or MARCXML document.
func (c controller) AuditDocument(format record.Format, source string, r io.Reader) ([]*audit.AnnotatedRecord, error) {
	raws, err := c.extractors[format].Parse(source, r)
	if err != nil {
		return nil, err
	}
	return c.auditors[format].Build(raws)
}

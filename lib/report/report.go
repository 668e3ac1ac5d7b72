package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/audit"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
)

var headers = map[record.Format][]string{
	record.EADFormat:  {"eadid", "bibnumber", "collection_title", "match_type", "match_term", "context_snippet", "match_rule"},
	record.MARCFormat: {"oclc_num", "bibnumber", "last_update", "creator", "title", "extent", "match_type", "terms", "context_snippets", "rule_ids"},
}

// FileName returns the report name for a run, e.g. EAD_Slurs_Outdated_noHB_nlp_report.csv.
func FileName(format record.Format, selection string, includeRestricted bool) string {
	restricted := "noHB"
	if includeRestricted {
		restricted = "HB"
	}
	return fmt.Sprintf("%s_%s_%s_nlp_report.csv", format, selection, restricted)
}

// Header returns the column names of a report.
func Header(format record.Format) ([]string, error) {
	header, ok := headers[format]
	if !ok {
		return nil, fmt.Errorf("no report header for format %q", format)
	}
	return header, nil
}

// Rows returns one row per matched term: the record metadata followed by the match type, term, context and rule.
func Rows(records []*audit.AnnotatedRecord) [][]string {
	var rows [][]string
	for _, annotated := range records {
		metadata := annotated.Record.Metadata()
		for _, result := range annotated.Results {
			for i := range result.Terms {
				row := make([]string, 0, len(metadata)+4)
				row = append(row, metadata...)
				row = append(row, result.Type, result.Terms[i], result.ContextSnippets[i], result.RuleIDs[i])
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// Write writes the header and rows of a report as CSV.
func Write(w io.Writer, format record.Format, records []*audit.AnnotatedRecord) error {
	header, err := Header(format)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(Rows(records)); err != nil {
		return err
	}
	return writer.Error()
}

/**
	WriteFile writes the report for a run into dir and returns its path.

	The report is written to a temporary file in dir and renamed into place once complete, so an interrupted
	run never leaves a partial report behind.
**/
func WriteFile(dir string, format record.Format, selection string, includeRestricted bool, records []*audit.AnnotatedRecord) (string, error) {
	dest := filepath.Join(dir, FileName(format, selection, includeRestricted))

	err := lib.WriteFileAtomic(dest, func(w io.Writer) error {
		return Write(w, format, records)
	})
	if err != nil {
		return "", err
	}

	log.Info().Str("path", dest).Int("records", len(records)).Msg("wrote report")
	return dest, nil
}

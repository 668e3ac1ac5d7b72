package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/audit"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/report"
)

// None in place of an archive path skips that format.
const None = "NONE"

// config structure
type auditConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Lexicon        struct {
		Path              string
		Selection         string
		IncludeRestricted bool `mapstructure:"include_restricted"`
	}
	RestrictedLexicons []string   `mapstructure:"restricted_lexicons"`
	OutputPath         string     `mapstructure:"output_path"`
	EADPath            string     `mapstructure:"ead_path"`
	MARCXMLPath        string     `mapstructure:"marcxml_path"`
	PhraseStore        cache.Type `mapstructure:"phrase_store"`
	PipelineSize       int        `mapstructure:"pipeline_size"`
	remote.Config      `mapstructure:",squash"`
	Blocklist          string
	Workers            int
	Record             record.Options
}

var defaultConfig = map[string]interface{}{
	"log_level": "info",
	"lexicon": map[string]interface{}{
		"path":               "./lexicons/lexicons.csv",
		"selection":          lexicon.All,
		"include_restricted": false,
	},
	"restricted_lexicons": lexicon.DefaultRestricted,
	"output_path":         ".",
	"ead_path":            None,
	"marcxml_path":        None,
	"phrase_store":        cache.Local,
	"pipeline_size":       matcher.DefaultPipelineSize,
	"redis": map[string]interface{}{
		"host": "localhost",
		"port": 6379,
	},
	"elasticsearch": map[string]interface{}{
		"host":  "localhost",
		"port":  9200,
		"index": "lexicons",
	},
	"record": map[string]interface{}{
		"bibnumber_type": record.DefaultOptions.BibnumberType,
	},
}

var rootCmd = &cobra.Command{
	Use:   "description-audit [lexicon_csv_path [lexicon_selection [include_restricted [output_path [ead_path [marcxml_path]]]]]]",
	Short: "Audit EAD and MARCXML descriptions against lexicons",
	Long: `Matches the text of EAD finding aids and MARCXML records against the phrases of a lexicon CSV
and writes one CSV report per archival format.

Positional arguments override the matching config keys, in order: lexicon.path, lexicon.selection,
lexicon.include_restricted, output_path, ead_path and marcxml_path. Use NONE as an archive path to skip
that format and ALL as the selection to use every lexicon.`,
	Args:          cobra.MaximumNArgs(6),
	RunE:          runAudit,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().String(lib.ConfigFlag, "./config/description-audit.yml", "The config file path.")
	rootCmd.Flags().Int("workers", 1, "number of goroutines matching records")
	rootCmd.Flags().String("blocklist", "", "path to a YAML blocklist of terms never reported")
}

func main() {
	lib.SetupLogger(os.Stderr, false)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	var config auditConfig
	if err := lib.InitializeConfigFlags(cmd.Flags(), defaultConfig, &config); err != nil {
		return err
	}
	if err := applyArgs(&config, args); err != nil {
		return err
	}
	if err := validate(config); err != nil {
		return err
	}

	log.Logger = log.With().Str("run_id", uuid.New().String()).Logger()
	_, err := run(config)
	return err
}

// applyArgs overrides config with the positional arguments.
func applyArgs(config *auditConfig, args []string) error {
	targets := []*string{&config.Lexicon.Path, &config.Lexicon.Selection, nil, &config.OutputPath, &config.EADPath, &config.MARCXMLPath}
	for i, arg := range args {
		if targets[i] != nil {
			*targets[i] = arg
			continue
		}
		includeRestricted, err := strconv.ParseBool(arg)
		if err != nil {
			return fmt.Errorf("include_restricted must be a boolean, got %q: %w", arg, lib.ErrInvalidInput)
		}
		config.Lexicon.IncludeRestricted = includeRestricted
	}
	return nil
}

// run audits each archival format that has a path and returns the paths of the written reports.
func run(config auditConfig) ([]string, error) {
	start := time.Now()

	set, err := lexicon.Load(config.Lexicon.Path, config.Lexicon.Selection, config.Lexicon.IncludeRestricted, config.RestrictedLexicons)
	if err != nil {
		return nil, err
	}

	m, err := compileMatcher(config, set)
	if err != nil {
		return nil, err
	}

	auditOpts := []audit.Option{audit.WithWorkers(config.Workers)}
	if config.Blocklist != "" {
		bl, err := blocklist.Load(config.Blocklist)
		if err != nil {
			return nil, err
		}
		auditOpts = append(auditOpts, audit.WithBlocklist(bl))
	}

	var reports []string
	for _, pass := range []struct {
		format record.Format
		path   string
	}{
		{record.EADFormat, config.EADPath},
		{record.MARCFormat, config.MARCXMLPath},
	} {
		if pass.path == None {
			continue
		}

		extractor, err := record.NewExtractor(pass.format, config.Record)
		if err != nil {
			return nil, err
		}
		annotated, err := audit.New(m, extractor, auditOpts...).Audit(pass.path)
		if err != nil {
			return nil, err
		}

		path, err := report.WriteFile(config.OutputPath, pass.format, config.Lexicon.Selection, config.Lexicon.IncludeRestricted, annotated)
		if err != nil {
			return nil, err
		}
		reports = append(reports, path)
	}

	log.Info().Strs("reports", reports).Dur("took", time.Since(start)).Msg("audit complete")
	return reports, nil
}

func compileMatcher(config auditConfig, set *lexicon.Set) (*matcher.Matcher, error) {
	if config.PhraseStore == "" || config.PhraseStore == cache.Local {
		return matcher.Compile(set)
	}

	client, err := remote.NewClient(config.PhraseStore, config.Config)
	if err != nil {
		return nil, err
	}
	if !client.Ready() {
		return nil, fmt.Errorf("%s phrase store is not ready", config.PhraseStore)
	}
	return matcher.Compile(set, matcher.WithRemoteStore(client, config.PipelineSize))
}

package main

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
)

// config structure
type lexiconImporterConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Lexicon        struct {
		Path              string
		Selection         string
		IncludeRestricted bool `mapstructure:"include_restricted"`
	}
	RestrictedLexicons []string   `mapstructure:"restricted_lexicons"`
	PhraseStore        cache.Type `mapstructure:"phrase_store"`
	PipelineSize       int        `mapstructure:"pipeline_size"`
	remote.Config      `mapstructure:",squash"`
}

var config lexiconImporterConfig

func initConfig() {
	// initialise config with defaults.
	err := lib.InitializeConfig("./config/lexicon-importer.yml", map[string]interface{}{
		"log_level": "info",
		"lexicon": map[string]interface{}{
			"path":               "./lexicons/lexicons.csv",
			"selection":          lexicon.All,
			"include_restricted": false,
		},
		"restricted_lexicons": lexicon.DefaultRestricted,
		"phrase_store":        cache.Redis,
		"pipeline_size":       10000,
		"redis": map[string]interface{}{
			"host": "localhost",
			"port": 6379,
		},
		"elasticsearch": map[string]interface{}{
			"host":  "localhost",
			"port":  9200,
			"index": "lexicons",
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func main() {
	initConfig()

	client, err := remote.NewClient(config.PhraseStore, config.Config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	set, err := lexicon.Load(config.Lexicon.Path, config.Lexicon.Selection, config.Lexicon.IncludeRestricted, config.RestrictedLexicons)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	lookups, err := matcher.Lookups(set)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	for !client.Ready() {
		log.Info().Msg("phrase store is not ready, waiting...")
		time.Sleep(10 * time.Second)
	}

	if err := upload(client, lookups, config.PipelineSize); err != nil {
		log.Fatal().Err(err).Send()
	}
	log.Info().Str("phrase_store", string(config.PhraseStore)).Strs("lexicons", set.Names()).Int("keys", len(lookups)).Msg("lexicons imported")
}

// upload sets every lookup in the store, executing a pipeline each time it reaches pipelineSize keys.
func upload(client remote.Client, lookups []*cache.Lookup, pipelineSize int) error {
	if pipelineSize <= 0 {
		pipelineSize = matcher.DefaultPipelineSize
	}

	pipe := client.NewSetPipeline(pipelineSize)
	for _, lookup := range lookups {
		b, err := json.Marshal(lookup)
		if err != nil {
			return err
		}
		pipe.Set(lookup.Key, b)

		if pipe.Size() >= pipelineSize {
			if err := pipe.ExecSet(); err != nil {
				return err
			}
			log.Info().Int("keys", pipe.Size()).Msg("pipeline executed")
			pipe = client.NewSetPipeline(pipelineSize)
		}
	}

	if pipe.Size() == 0 {
		return nil
	}
	return pipe.ExecSet()
}

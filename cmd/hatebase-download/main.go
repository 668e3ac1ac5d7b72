package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/hatebase"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
)

// config structure
type hatebaseDownloadConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Hatebase       hatebase.Config
	Lexicon        struct {
		Path string
	}
	// OutputPath is the merged lexicon CSV, the lexicon path itself when empty.
	OutputPath string        `mapstructure:"output_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var config hatebaseDownloadConfig

func initConfig() {
	err := lib.InitializeConfig("./config/hatebase-download.yml", map[string]interface{}{
		"log_level": "info",
		"hatebase": map[string]interface{}{
			"url":                 hatebase.DefaultURL,
			"api_key":             "",
			"language":            "eng",
			"requests_per_second": 1,
		},
		"lexicon": map[string]interface{}{
			"path": "./lexicons/lexicons.csv",
		},
		"output_path": "",
		"timeout":     "30s",
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func main() {
	initConfig()
	if config.Hatebase.APIKey == "" {
		log.Fatal().Msg("hatebase.api_key must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output := config.OutputPath
	if output == "" {
		output = config.Lexicon.Path
	}

	client := hatebase.NewClient(config.Hatebase, &http.Client{Timeout: config.Timeout})
	n, err := download(ctx, client, config.Lexicon.Path, output)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	log.Info().Str("path", output).Int("terms", n).Msg("hatebase lexicons written")
}

// download fetches the HateBase vocabulary and writes it into the lexicon table at lexiconPath, saved to
// outputPath. A missing lexicon file starts an empty table. It returns the number of terms fetched.
func download(ctx context.Context, client *hatebase.Client, lexiconPath, outputPath string) (int, error) {
	table, err := lexicon.ReadTableFile(lexiconPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", lexiconPath).Msg("lexicon file not found, starting an empty table")
		table = &lexicon.Table{}
	} else if err != nil {
		return 0, err
	}

	token, err := client.Authenticate(ctx)
	if err != nil {
		return 0, fmt.Errorf("authenticating with hatebase: %w", err)
	}

	terms, err := client.Vocabulary(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("fetching hatebase vocabulary: %w", err)
	}

	hatebase.Merge(table, terms)
	if err := lexicon.WriteTableFile(outputPath, table); err != nil {
		return 0, err
	}
	return len(terms), nil
}

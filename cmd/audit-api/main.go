package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/audit"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
)

// config structure
type auditAPIConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		HttpPort       int      `mapstructure:"http_port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	}
	Lexicon struct {
		Path              string
		Selection         string
		IncludeRestricted bool `mapstructure:"include_restricted"`
	}
	RestrictedLexicons []string   `mapstructure:"restricted_lexicons"`
	PhraseStore        cache.Type `mapstructure:"phrase_store"`
	PipelineSize       int        `mapstructure:"pipeline_size"`
	remote.Config      `mapstructure:",squash"`
	Blocklist          string
	Workers            int
	Record             record.Options
}

var config auditAPIConfig

func initConfig() {
	// Set default config values
	err := lib.InitializeConfig("./config/audit-api.yml", map[string]interface{}{
		"log_level": "info",
		"server": map[string]interface{}{
			"http_port": 8080,
		},
		"lexicon": map[string]interface{}{
			"path":               "./lexicons/lexicons.csv",
			"selection":          lexicon.All,
			"include_restricted": false,
		},
		"restricted_lexicons": lexicon.DefaultRestricted,
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
		"workers": 1,
		"record": map[string]interface{}{
			"bibnumber_type": record.DefaultOptions.BibnumberType,
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func main() {
	initConfig()

	set, err := lexicon.Load(config.Lexicon.Path, config.Lexicon.Selection, config.Lexicon.IncludeRestricted, config.RestrictedLexicons)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	var matcherOpts []matcher.Option
	if config.PhraseStore != cache.Local {
		client, err := remote.NewClient(config.PhraseStore, config.Config)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		for !client.Ready() {
			log.Info().Msg("phrase store is not ready, waiting...")
			time.Sleep(10 * time.Second)
		}
		matcherOpts = append(matcherOpts, matcher.WithRemoteStore(client, config.PipelineSize))
	}

	m, err := matcher.Compile(set, matcherOpts...)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	auditOpts := []audit.Option{audit.WithWorkers(config.Workers)}
	if config.Blocklist != "" {
		bl, err := blocklist.Load(config.Blocklist)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		auditOpts = append(auditOpts, audit.WithBlocklist(bl))
	}

	c, err := newController(set, m, config.Record, auditOpts...)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{Formatter: lib.JsonLogFormatter, Output: os.Stdout}), gin.Recovery())
	r.Use(corsMiddleware(config.Server.AllowedOrigins))
	s := server{controller: c}
	s.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.HttpPort),
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Send()
		}
	}()
	log.Info().Int("port", config.Server.HttpPort).Msg("audit api listening")

	lib.HandleInterrupt(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutting down server")
		}
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return cors.Default()
	}
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	return cors.New(corsConfig)
}

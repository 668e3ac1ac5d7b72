package hatebase

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"golang.org/x/time/rate"
)

const (
	// FullLexicon holds every HateBase term.
	FullLexicon = "HateBaseFull"
	// UnambiguousLexicon holds the terms HateBase marks as unambiguous.
	UnambiguousLexicon = "HateBaseUnambiguous"

	DefaultURL = "https://api.hatebase.org/4-4"
)

type Config struct {
	URL               string  `mapstructure:"url"`
	APIKey            string  `mapstructure:"api_key"`
	Language          string  `mapstructure:"language"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// Term is a vocabulary entry.
type Term struct {
	Term          string `json:"term"`
	IsUnambiguous bool   `json:"is_unambiguous"`
}

type authResponse struct {
	Result struct {
		Token string `json:"token"`
	} `json:"result"`
}

type vocabularyResponse struct {
	NumberOfPages   int    `json:"number_of_pages"`
	NumberOfResults int    `json:"number_of_results"`
	Result          []Term `json:"result"`
}

type Client struct {
	conf       Config
	httpClient lib.HttpClient
	limiter    *rate.Limiter
}

func NewClient(conf Config, httpClient lib.HttpClient) *Client {
	if conf.URL == "" {
		conf.URL = DefaultURL
	}
	if conf.Language == "" {
		conf.Language = "eng"
	}
	limit := rate.Inf
	if conf.RequestsPerSecond > 0 {
		limit = rate.Limit(conf.RequestsPerSecond)
	}
	return &Client{
		conf:       conf,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Authenticate exchanges the API key for a session token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	var auth authResponse
	if err := c.post(ctx, "authenticate", url.Values{"api_key": {c.conf.APIKey}}, &auth); err != nil {
		return "", err
	}
	if auth.Result.Token == "" {
		return "", fmt.Errorf("hatebase authentication returned no token")
	}
	return auth.Result.Token, nil
}

// Vocabulary fetches every page of the vocabulary for the configured language.
func (c *Client) Vocabulary(ctx context.Context, token string) ([]Term, error) {
	var terms []Term
	pages := 1
	for page := 1; page <= pages; page++ {
		var vocab vocabularyResponse
		err := c.post(ctx, "get_vocabulary", url.Values{
			"token":    {token},
			"format":   {"json"},
			"language": {c.conf.Language},
			"page":     {strconv.Itoa(page)},
		}, &vocab)
		if err != nil {
			return nil, err
		}
		pages = vocab.NumberOfPages
		terms = append(terms, vocab.Result...)
		log.Debug().Int("page", page).Int("pages", pages).Msg("fetched vocabulary page")
	}
	return terms, nil
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.conf.URL, "/")+"/"+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hatebase %s returned %d: %s", endpoint, resp.StatusCode, string(b))
	}
	return json.Unmarshal(b, target)
}

// Columns splits terms into the full and unambiguous lexicons, dropping duplicates.
func Columns(terms []Term) (full, unambiguous []string) {
	seenFull := map[string]bool{}
	seenUnambiguous := map[string]bool{}
	for _, term := range terms {
		phrase := strings.TrimSpace(term.Term)
		if phrase == "" {
			continue
		}
		if !seenFull[phrase] {
			seenFull[phrase] = true
			full = append(full, phrase)
		}
		if term.IsUnambiguous && !seenUnambiguous[phrase] {
			seenUnambiguous[phrase] = true
			unambiguous = append(unambiguous, phrase)
		}
	}
	return full, unambiguous
}

// Merge writes the HateBase lexicons into table, replacing earlier versions of them.
func Merge(table *lexicon.Table, terms []Term) {
	full, unambiguous := Columns(terms)
	table.SetColumn(FullLexicon, full)
	table.SetColumn(UnambiguousLexicon, unambiguous)
}

package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	FeedMES   = "mes"
	FeedMQS   = "mqs"
	FeedYield = "yield"
)

// FeedNames lists the known feeds in import order.
var FeedNames = []string{FeedMES, FeedMQS, FeedYield}

type FeedSource struct {
	URL     string `toml:"url"`
	Enabled bool   `toml:"enabled"`
}

// FeedCatalog is the TOML file mapping each feed to its published CSV
// export URL. It is re-read on every run so a URL rotation does not need a
// process restart.
type FeedCatalog struct {
	Version int                   `toml:"version"`
	Feeds   map[string]FeedSource `toml:"feeds"`
}

func LoadFeedCatalog(catalogFile string) (FeedCatalog, error) {
	path := strings.TrimSpace(catalogFile)
	if path == "" {
		return FeedCatalog{}, errors.New("feed catalog file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FeedCatalog{}, err
	}

	var catalog FeedCatalog
	if err := toml.Unmarshal(raw, &catalog); err != nil {
		return FeedCatalog{}, err
	}
	if err := validateFeedCatalog(catalog); err != nil {
		return FeedCatalog{}, err
	}
	return catalog, nil
}

func validateFeedCatalog(catalog FeedCatalog) error {
	if catalog.Version != 1 {
		return errors.New("unsupported feed catalog version: expected version = 1")
	}

	for name, source := range catalog.Feeds {
		if !knownFeed(name) {
			return fmt.Errorf("unknown feed %q in catalog", name)
		}
		if source.Enabled && strings.TrimSpace(source.URL) == "" {
			return fmt.Errorf("feeds.%s.url is required when enabled", name)
		}
	}
	return nil
}

// Source resolves one feed's entry; a feed absent from the catalog is
// treated as disabled.
func (c FeedCatalog) Source(name string) (FeedSource, error) {
	if !knownFeed(name) {
		return FeedSource{}, fmt.Errorf("unknown feed %q", name)
	}
	return c.Feeds[name], nil
}

func knownFeed(name string) bool {
	for _, known := range FeedNames {
		if name == known {
			return true
		}
	}
	return false
}

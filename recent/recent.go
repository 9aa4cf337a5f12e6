// Package recent remembers VOD page URLs so the shell can complete them.
package recent

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/key"
	"github.com/vodrip/vodrip/where"
	"golang.org/x/exp/slices"
)

type urlRecord struct {
	Rank int    `json:"rank"`
	URL  string `json:"url"`
}

var cacher = gache.New[map[string]*urlRecord](
	&gache.Options{
		Path:       where.Recent(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Remember records url, or raises its rank by weight when already known.
func Remember(url string, weight int) error {
	url = strings.TrimSpace(url)
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*urlRecord)
	}

	if record, ok := cached[url]; ok {
		record.Rank += weight
	} else {
		cached[url] = &urlRecord{Rank: weight, URL: url}
	}

	return cacher.Set(cached)
}

// Suggest returns remembered URLs fuzzily matching partial, most used first.
func Suggest(partial string) []string {
	if !viper.GetBool(key.CliSuggestURLs) {
		return []string{}
	}

	cached, expired, err := cacher.Get()
	if err != nil || expired || cached == nil {
		return []string{}
	}

	partial = strings.TrimSpace(partial)
	records := lo.Filter(lo.Values(cached), func(r *urlRecord, _ int) bool {
		return fuzzy.MatchFold(partial, r.URL)
	})

	slices.SortFunc(records, func(a, b *urlRecord) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return strings.Compare(a.URL, b.URL)
	})

	return lo.Map(records, func(r *urlRecord, _ int) string {
		return r.URL
	})
}

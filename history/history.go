// Package history keeps a record of finished downloads.
package history

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/where"
	"golang.org/x/exp/slices"
)

// cacher is the disk-backed registry of records, keyed by job ID.
var cacher = gache.New[map[string]*Record](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every saved record.
func Get() (map[string]*Record, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Save adds the record, replacing an earlier one with the same ID.
func Save(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	saved[record.ID] = record
	return cacher.Set(saved)
}

// Remove deletes a record.
func Remove(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.ID)
	return cacher.Set(saved)
}

// List returns the saved records, newest first.
func List() ([]*Record, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	records := lo.Values(saved)
	slices.SortFunc(records, func(a, b *Record) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	return records, nil
}

// Filter keeps the records whose user, title or file name fuzzily match query.
func Filter(records []*Record, query string) []*Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}

	return lo.Filter(records, func(r *Record, _ int) bool {
		return fuzzy.MatchFold(query, r.User) ||
			fuzzy.MatchFold(query, r.Title) ||
			fuzzy.MatchFold(query, r.Output)
	})
}

// Package page scrapes the JSON context a VOD page embeds in a script tag.
package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/network"
	"github.com/vodrip/vodrip/util"
)

// ErrContextNotFound is returned when a page carries no usable __context script.
var ErrContextNotFound = errors.New("page context not found")

// contextPattern matches the assignment once newlines and tabs are gone. The lazy
// group stops at the first closing tag so later inline scripts are not swallowed.
var contextPattern = regexp.MustCompile(`<script>__context\s=\s(?P<payload>.*?);</script>`)

// Context is the part of the embedded page state the downloader needs.
type Context struct {
	VOD VOD `json:"vod"`
}

// VOD identifies an archived stream and where its manifest lives.
type VOD struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	UserSlug  string `json:"userSlug"`
	Links     struct {
		Manifest struct {
			Href string `json:"href"`
		} `json:"manifest"`
	} `json:"_links"`
}

// ManifestURL is the location of the rendition manifest.
func (v *VOD) ManifestURL() string {
	return v.Links.Manifest.Href
}

// Extractor fetches pages and pulls their context out.
type Extractor struct {
	Client *http.Client
}

// Extract downloads the page at url and parses its embedded context.
func (e *Extractor) Extract(ctx context.Context, url string) (*Context, error) {
	log.Infof("fetching page %s", url)

	resp, err := network.Get(ctx, e.Client, url)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if !network.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("fetch page: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	return Parse(string(body))
}

// Parse finds the __context assignment in html and decodes it.
func Parse(html string) (*Context, error) {
	normalized := strings.NewReplacer("\n", "", "\t", "").Replace(html)

	payload, ok := util.ReGroups(contextPattern, normalized)["payload"]
	if !ok {
		return nil, ErrContextNotFound
	}

	var parsed Context
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextNotFound, err)
	}

	if parsed.VOD.ManifestURL() == "" {
		return nil, fmt.Errorf("%w: no manifest link", ErrContextNotFound)
	}

	return &parsed, nil
}

// Package notion keeps project tracker pages in sync with confirmed casts.
package notion

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"casting_ops_backend/platform/config"

	"github.com/jomei/notionapi"
)

// Tracker page properties that collect confirmed cast names.
const (
	PropertyInternalCast = "内部キャスト"
	PropertyMainCast     = "メインキャスト"
	PropertySubCast      = "サブキャスト"
)

var hexRun = regexp.MustCompile(`[0-9a-fA-F]{32,}`)

// NormalizePageID extracts the 32-hex page key from a page id or URL,
// dashes stripped and lower-cased. It returns "" when none is present.
// Page URLs end in the id, so the last 32 hex digits of the path win.
func NormalizePageID(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	runs := hexRun.FindAllString(strings.ReplaceAll(s, "-", ""), -1)
	if len(runs) == 0 {
		return ""
	}
	last := runs[len(runs)-1]
	return strings.ToLower(last[len(last)-32:])
}

// PageURL links to a tracker page by key.
func PageURL(key string) string {
	return "https://www.notion.so/" + key
}

// PropertyFor picks the multi-select a confirmed cast is listed under.
func PropertyFor(internal bool, mainTier bool) string {
	switch {
	case internal:
		return PropertyInternalCast
	case mainTier:
		return PropertyMainCast
	default:
		return PropertySubCast
	}
}

type Client struct {
	api *notionapi.Client
}

// NewClient returns nil when no integration token is configured.
func NewClient(cfg config.NotionConfig, httpClient *http.Client) *Client {
	if !cfg.IsNotionEnabled() {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		api: notionapi.NewClient(notionapi.Token(cfg.GetNotionToken()), notionapi.WithHTTPClient(httpClient)),
	}
}

// AddToMultiSelect appends name to a multi-select property of the page. It
// reports false without writing when the name is already present.
func (c *Client) AddToMultiSelect(ctx context.Context, pageKey, property, name string) (bool, error) {
	if c == nil {
		return false, nil
	}
	key := NormalizePageID(pageKey)
	if key == "" {
		return false, fmt.Errorf("notion: invalid page id %q", pageKey)
	}

	page, err := c.api.Page.Get(ctx, notionapi.PageID(key))
	if err != nil {
		return false, fmt.Errorf("notion get page: %w", err)
	}

	current := multiSelectOptions(page.Properties[property])
	options := make([]notionapi.Option, 0, len(current)+1)
	for _, opt := range current {
		if opt.Name == name {
			return false, nil
		}
		options = append(options, notionapi.Option{Name: opt.Name})
	}
	options = append(options, notionapi.Option{Name: name})

	_, err = c.api.Page.Update(ctx, notionapi.PageID(key), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			property: notionapi.MultiSelectProperty{
				Type:        notionapi.PropertyTypeMultiSelect,
				MultiSelect: options,
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("notion update page: %w", err)
	}
	return true, nil
}

func multiSelectOptions(p notionapi.Property) []notionapi.Option {
	switch typed := p.(type) {
	case *notionapi.MultiSelectProperty:
		return typed.MultiSelect
	case notionapi.MultiSelectProperty:
		return typed.MultiSelect
	}
	return nil
}

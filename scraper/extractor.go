package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/use-agent/productinfo/config"
	"github.com/use-agent/productinfo/models"
)

// Extractor turns a product page URL into a title and image URL.
// It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	fetcher *pageFetcher
	cfg     config.FetchConfig
}

// NewExtractor creates an Extractor using cfg for every outbound request.
func NewExtractor(cfg config.FetchConfig) *Extractor {
	return &Extractor{
		fetcher: newPageFetcher(cfg, nil),
		cfg:     cfg,
	}
}

// Extract fetches rawURL once and extracts product info from it.
//
// Every error is a *models.ExtractError:
//   - ReasonMissingURL when rawURL is blank (no request is made),
//   - ReasonFetchFailed for transport errors, non-2xx status or unreadable markup,
//   - ReasonProductInfoNotFound when the page has no #productTitle, whatever
//     images it may carry.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*models.ProductInfo, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, models.NewExtractError(models.ReasonMissingURL, models.MsgURLRequired, nil)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	p, err := e.fetcher.fetch(ctx, rawURL)
	if err != nil {
		return nil, models.NewExtractError(models.ReasonFetchFailed, models.MsgFetchFailed, err)
	}

	doc, err := parsePage(p)
	if err != nil {
		return nil, models.NewExtractError(models.ReasonFetchFailed, models.MsgFetchFailed, err)
	}

	title := ExtractTitle(doc)
	if title == "" {
		return nil, models.NewExtractError(models.ReasonProductInfoNotFound, models.MsgProductNotFound, nil)
	}

	imageURL, source := ExtractImage(doc)
	slog.Debug("product info extracted",
		"url", rawURL,
		"finalUrl", p.FinalURL,
		"imageSource", source,
	)

	return &models.ProductInfo{
		Title:       title,
		ImageURL:    imageURL,
		ImageSource: source,
	}, nil
}

// Close releases idle upstream connections.
func (e *Extractor) Close() {
	e.fetcher.close()
}

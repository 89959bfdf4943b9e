package scraper

import (
	"encoding/json"
	"strings"

	"github.com/andybalholm/cascadia"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attribute names used on product page image elements.
const (
	attrDynamicImage = "data-a-dynamic-image"
	attrOldHires     = "data-old-hires"
	attrSrc          = "src"
	attrContent      = "content"
)

var (
	selProductTitle  = cascadia.MustCompile("#productTitle")
	selLandingImage  = cascadia.MustCompile("#landingImage")
	selBookCover     = cascadia.MustCompile("#imgBlkFront")
	selEbookCover    = cascadia.MustCompile("#ebooksImgBlkFront")
	selOGImage       = cascadia.MustCompile(`meta[property="og:image"]`)
	selDynamicImages = cascadia.MustCompile(".a-dynamic-image")
)

// ImageStrategy is one step of the image fallback chain. Find returns "" when
// the step does not apply to doc.
type ImageStrategy struct {
	Name string
	Find func(doc *Document) string
}

// imageStrategies is the fixed evaluation order. The first non-empty result
// wins.
var imageStrategies = []ImageStrategy{
	{"landingImage:dynamic", dynamicImage(selLandingImage)},
	{"landingImage:old-hires", attribute(selLandingImage, attrOldHires)},
	{"landingImage:src", attribute(selLandingImage, attrSrc)},
	{"imgBlkFront:dynamic", dynamicImage(selBookCover)},
	{"imgBlkFront:src", attribute(selBookCover, attrSrc)},
	{"ebooksImgBlkFront:dynamic", dynamicImage(selEbookCover)},
	{"ebooksImgBlkFront:src", attribute(selEbookCover, attrSrc)},
	{"og:image", attribute(selOGImage, attrContent)},
	{"a-dynamic-image:src", attribute(selDynamicImages, attrSrc)},
}

// ImageStrategies returns a copy of the image fallback chain in order.
func ImageStrategies() []ImageStrategy {
	out := make([]ImageStrategy, len(imageStrategies))
	copy(out, imageStrategies)
	return out
}

// ExtractTitle returns the trimmed #productTitle text, or "" if absent.
func ExtractTitle(doc *Document) string {
	return strings.TrimSpace(doc.find(selProductTitle).Text())
}

// ExtractImage runs the fallback chain and returns the first image URL found
// together with the name of the strategy that produced it. Both are "" when
// every strategy misses.
func ExtractImage(doc *Document) (imageURL, source string) {
	for _, s := range imageStrategies {
		if u := s.Find(doc); u != "" {
			return u, s.Name
		}
	}
	return "", ""
}

func attribute(sel cascadia.Selector, name string) func(*Document) string {
	return func(doc *Document) string {
		return doc.attr(sel, name)
	}
}

func dynamicImage(sel cascadia.Selector) func(*Document) string {
	return func(doc *Document) string {
		return firstDynamicImage(doc.attr(sel, attrDynamicImage))
	}
}

// firstDynamicImage returns the first key, in document order, of a dynamic
// image map such as {"https://m.media-amazon.com/a.jpg":[500,500],...}.
// The first key is not necessarily the largest image. Anything that is not a
// well-formed JSON object yields "".
func firstDynamicImage(raw string) string {
	if raw == "" || !json.Valid([]byte(raw)) {
		return ""
	}

	images := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal([]byte(raw), images); err != nil {
		return ""
	}

	first := images.Oldest()
	if first == nil {
		return ""
	}
	return first.Key
}

package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/productinfo/config"
	"github.com/use-agent/productinfo/models"
)

const widgetPage = `<!doctype html><html><head>
<meta property="og:image" content="http://img/og.jpg">
</head><body>
<span id="productTitle">  Widget  </span>
<img id="landingImage" data-a-dynamic-image='{"http://img/a.jpg":[500,500]}' src="http://img/src.jpg">
</body></html>`

func testFetchConfig() config.FetchConfig {
	cfg := config.Default().Fetch
	cfg.Timeout = 2 * time.Second
	cfg.TLSFingerprint = false
	return cfg
}

// origin serves body with status and counts the requests it receives.
func origin(t *testing.T, status int, contentType, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func requireReason(t *testing.T, err error, want models.FailureReason) {
	t.Helper()
	require.Error(t, err)
	var ee *models.ExtractError
	require.True(t, errors.As(err, &ee), "expected *models.ExtractError, got %T", err)
	assert.Equal(t, want, ee.Reason)
}

func TestExtract_Success(t *testing.T) {
	srv, hits := origin(t, http.StatusOK, "text/html; charset=utf-8", widgetPage)
	ex := NewExtractor(testFetchConfig())
	defer ex.Close()

	info, err := ex.Extract(context.Background(), srv.URL+"/dp/B000000000")
	require.NoError(t, err)

	assert.Equal(t, "Widget", info.Title)
	assert.Equal(t, "http://img/a.jpg", info.ImageURL)
	assert.Equal(t, "landingImage:dynamic", info.ImageSource)
	assert.EqualValues(t, 1, hits.Load())
}

func TestExtract_MissingURL(t *testing.T) {
	_, hits := origin(t, http.StatusOK, "text/html", widgetPage)
	ex := NewExtractor(testFetchConfig())

	for _, u := range []string{"", "   ", "\t\n"} {
		info, err := ex.Extract(context.Background(), u)
		assert.Nil(t, info)
		requireReason(t, err, models.ReasonMissingURL)
	}
	assert.EqualValues(t, 0, hits.Load())
}

func TestExtract_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(widgetPage))
	}))
	defer srv.Close()

	_, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultUserAgent, gotUA)
	assert.Equal(t, config.DefaultAcceptLanguage, gotLang)
}

func TestExtract_FetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := origin(t, tt.status, "text/html", widgetPage)
			info, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL)
			assert.Nil(t, info)
			requireReason(t, err, models.ReasonFetchFailed)
		})
	}
}

func TestExtract_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewExtractor(testFetchConfig()).Extract(context.Background(), addr)
	requireReason(t, err, models.ReasonFetchFailed)
}

func TestExtract_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testFetchConfig()
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewExtractor(cfg).Extract(context.Background(), srv.URL)
	requireReason(t, err, models.ReasonFetchFailed)
}

func TestExtract_MalformedURL(t *testing.T) {
	_, err := NewExtractor(testFetchConfig()).Extract(context.Background(), "://nope")
	requireReason(t, err, models.ReasonFetchFailed)
}

func TestExtract_TooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL+"/")
	requireReason(t, err, models.ReasonFetchFailed)
	assert.ErrorIs(t, err, errTooManyRedirects)
}

func TestExtract_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dp/B1", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/dp/B1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(widgetPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	info, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, "Widget", info.Title)
}

func TestExtract_TitleRequired(t *testing.T) {
	markup := `<html><body>
		<img id="landingImage" data-a-dynamic-image='{"http://img/a.jpg":[500,500]}'>
		<meta property="og:image" content="http://img/og.jpg">
	</body></html>`
	srv, _ := origin(t, http.StatusOK, "text/html", markup)

	info, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL)
	assert.Nil(t, info)
	requireReason(t, err, models.ReasonProductInfoNotFound)
}

func TestExtract_TitleWithoutImage(t *testing.T) {
	srv, _ := origin(t, http.StatusOK, "text/html", `<span id="productTitle">Widget</span>`)

	info, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Widget", info.Title)
	assert.Empty(t, info.ImageURL)
	assert.Empty(t, info.ImageSource)
}

func TestExtract_MalformedDynamicImageContinues(t *testing.T) {
	markup := `<head><meta property="og:image" content="http://img/og.jpg"></head>
		<span id="productTitle">Widget</span>
		<img id="landingImage" data-a-dynamic-image="not-json">`
	srv, _ := origin(t, http.StatusOK, "text/html", markup)

	info, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "http://img/og.jpg", info.ImageURL)
}

func TestExtract_DecodesDeclaredCharset(t *testing.T) {
	// "Caf\xe9" is "Café" in ISO-8859-1.
	srv, _ := origin(t, http.StatusOK, "text/html; charset=iso-8859-1", "<span id=\"productTitle\">Caf\xe9</span>")

	info, err := NewExtractor(testFetchConfig()).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café", info.Title)
}

func TestExtract_Idempotent(t *testing.T) {
	srv, hits := origin(t, http.StatusOK, "text/html", widgetPage)
	ex := NewExtractor(testFetchConfig())

	first, err := ex.Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		got, err := ex.Extract(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.EqualValues(t, 4, hits.Load())
}

func TestExtract_OversizedPageFails(t *testing.T) {
	srv, _ := origin(t, http.StatusOK, "text/html", widgetPage)

	cfg := testFetchConfig()
	cfg.MaxBodyBytes = 32

	_, err := NewExtractor(cfg).Extract(context.Background(), srv.URL)
	requireReason(t, err, models.ReasonFetchFailed)
	assert.ErrorIs(t, err, errBodyTooLarge)
}

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"placeholder/internal/config"
	"placeholder/internal/fonts"
	"placeholder/internal/placeholder"
	"placeholder/internal/render"
)

func newTestHandlers(t *testing.T, mutate func(*config.Config)) *Handlers {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	log := zaptest.NewLogger(t)

	caches, err := placeholder.NewCaches(cfg.CachePolicy, cfg.MaxCacheSize, log)
	require.NoError(t, err)
	selector := fonts.NewSelector(caches.Fonts, fonts.NewOpenTypeLoader(""), cfg.MinFontSize, cfg.MaxFontSize, log)

	format, err := render.ParseFormat(cfg.ImageFormat)
	require.NoError(t, err)
	enc, err := render.NewEncoder(render.EncoderNative, render.EncodeOptions{
		Format:         format,
		Quality:        cfg.ImageQuality,
		PNGCompression: cfg.PNGCompressionLevel,
	}, log)
	require.NoError(t, err)

	svc := placeholder.NewService(caches.Images, selector, render.New(enc, log), placeholder.Options{
		Quality:     cfg.ImageQuality,
		ETagEnabled: cfg.ETagEnabled,
	}, log)
	return New(cfg, log, svc)
}

func do(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestImage_DefaultPNG(t *testing.T) {
	router := NewRouter(newTestHandlers(t, nil))

	rec := do(t, router, http.MethodGet, "/800x600/ffffff/000000", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	// Default text is the dimension string, which is part of the ETag key.
	assert.Equal(t, placeholder.ETag("800x600-ffffff-000000-800x600-auto-false-80-png-90", true), rec.Header().Get("ETag"))

	again := do(t, router, http.MethodGet, "/800x600/ffffff/000000", nil)
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.Equal(t, rec.Body.Bytes(), again.Body.Bytes())
}

func TestImage_ValidationErrors(t *testing.T) {
	router := NewRouter(newTestHandlers(t, nil))

	tests := []struct {
		target string
		body   string
	}{
		{"/100x100/fff/000000", "Invalid background color format. Use 6-digit hex, e.g., ffffff"},
		{"/0x600/ffffff/000000", "Invalid dimensions format. Use WxH with positive numbers, e.g., 800x600"},
		{"/800x600/ffffff/000000?fontSize=200", "Invalid font size. Must be between 8 and 128 pixels"},
		{"/9000x600/ffffff/000000", "Image dimensions exceed maximum allowed size of 5000x5000"},
		{"/800x600/ffffff/000000?textWrap=true&textWrapWidth=20", "Invalid text wrap width. Must be between 50 and 95 percent"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestImage_ConditionalGet(t *testing.T) {
	router := NewRouter(newTestHandlers(t, nil))

	first := do(t, router, http.MethodGet, "/300x200/eeeeee/111111?text=Hello", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")

	rec := do(t, router, http.MethodGet, "/300x200/eeeeee/111111?text=Hello", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, etag, rec.Header().Get("ETag"))

	rec = do(t, router, http.MethodGet, "/300x200/eeeeee/111111?text=Other", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImage_ETagDisabled(t *testing.T) {
	router := NewRouter(newTestHandlers(t, func(c *config.Config) {
		c.ETagEnabled = false
		c.CachePublic = false
		c.CacheImmutable = false
		c.CacheMaxAge = 60
	}))

	rec := do(t, router, http.MethodGet, "/50x50/ffffff/000000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("ETag"))
	assert.Equal(t, "private, max-age=60", rec.Header().Get("Cache-Control"))
}

func TestImage_HeadAndDisposition(t *testing.T) {
	router := NewRouter(newTestHandlers(t, func(c *config.Config) {
		c.ImageFormat = "jpeg"
		c.ContentDisposition = "attachment"
	}))

	rec := do(t, router, http.MethodHead, "/64x32/000000/ffffff", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="placeholder-64x32.jpeg"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Body.Bytes())
}

func TestRoot_Health_Favicon(t *testing.T) {
	router := NewRouter(newTestHandlers(t, func(c *config.Config) { c.Env = "test" }))

	rec := do(t, router, http.MethodGet, "/favicon.ico", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, ServiceName, info["service"])
	assert.Contains(t, info["parameters"], "fontSize")

	rec = do(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status      string            `json:"status"`
		Environment string            `json:"environment"`
		Uptime      float64           `json:"uptime"`
		Cache       placeholder.Stats `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Environment)
	assert.Equal(t, 100, health.Cache.Images.Capacity)
}

func TestHealthDisabled(t *testing.T) {
	router := NewRouter(newTestHandlers(t, func(c *config.Config) { c.HealthCheckEnabled = false }))

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	router := NewRouter(newTestHandlers(t, nil))

	rec := do(t, router, http.MethodGet, "/a/b/c/d", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	router := NewRouter(newTestHandlers(t, func(c *config.Config) {
		c.CORSEnabled = true
		c.CORSOrigin = "https://example.com"
	}))

	rec := do(t, router, http.MethodOptions, "/100x100/ffffff/000000", map[string]string{
		"Origin":                        "https://example.com",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")

	rec = do(t, router, http.MethodGet, "/favicon.ico", nil)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisabled(t *testing.T) {
	router := NewRouter(newTestHandlers(t, nil))

	rec := do(t, router, http.MethodGet, "/favicon.ico", nil)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func doFrom(t *testing.T, h http.Handler, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func rateLimited(trustProxy bool) func(*config.Config) {
	return func(c *config.Config) {
		c.RateLimitEnabled = true
		c.RateLimitMax = 2
		c.RateLimitWindowMS = 60000
		c.TrustProxy = trustProxy
	}
}

func TestRateLimit(t *testing.T) {
	router := NewRouter(newTestHandlers(t, rateLimited(false)))

	assert.Equal(t, http.StatusNoContent, doFrom(t, router, "10.0.0.1:4000", nil).Code)
	assert.Equal(t, http.StatusNoContent, doFrom(t, router, "10.0.0.1:4001", nil).Code)

	rec := doFrom(t, router, "10.0.0.1:4002", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests from this IP, please try again later.", strings.TrimSpace(rec.Body.String()))

	assert.Equal(t, http.StatusNoContent, doFrom(t, router, "10.0.0.2:4000", nil).Code)
}

func TestRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	router := NewRouter(newTestHandlers(t, rateLimited(false)))

	var codes []int
	for i := 0; i < 6; i++ {
		rec := doFrom(t, router, "192.0.2.7:5000", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
			"X-Real-Ip":       fmt.Sprintf("10.1.0.%d", i),
		})
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{204, 204, 429, 429, 429, 429}, codes)
}

func TestRateLimit_TrustProxyUsesForwardedFor(t *testing.T) {
	router := NewRouter(newTestHandlers(t, rateLimited(true)))

	for i := 0; i < 4; i++ {
		rec := doFrom(t, router, "192.0.2.7:5000", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	client := map[string]string{"X-Forwarded-For": "10.9.9.9"}
	doFrom(t, router, "192.0.2.7:5000", client)
	doFrom(t, router, "192.0.2.7:5000", client)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(t, router, "192.0.2.7:5000", client).Code)
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
}

func TestTimeoutMiddleware(t *testing.T) {
	h := newTestHandlers(t, nil)

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("too late"))
	})
	rec := httptest.NewRecorder()
	h.TimeoutMiddleware(10*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, "Request timeout", strings.TrimSpace(rec.Body.String()))

	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("done"))
	})
	rec = httptest.NewRecorder()
	h.TimeoutMiddleware(time.Second)(fast).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "done", rec.Body.String())
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[::1]:4000"
	assert.Equal(t, "::1", extractIP(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	r.Header.Set("X-Real-Ip", "9.9.9.9")
	assert.Equal(t, "::1", extractIP(r))

	r.RemoteAddr = "1.2.3.4"
	assert.Equal(t, "1.2.3.4", extractIP(r))

	r.RemoteAddr = ""
	assert.Equal(t, "unknown", extractIP(r))
}

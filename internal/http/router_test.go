package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/rehab-rewards-backend/internal/assets"
	"github.com/tbourn/rehab-rewards-backend/internal/auth"
	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/http/handlers"
	"github.com/tbourn/rehab-rewards-backend/internal/http/middleware"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

const jwtSecret = "router-secret"

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:router-" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(repo.Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api",
		RateRPS:        100,
		RateBurst:      100,
		CollabRPS:      100,
		CollabBurst:    100,
		MaxBodyBytes:   1 << 20,
		MaxVideoBytes:  4 << 20,
		IdempotencyTTL: time.Hour,
		Assets:         config.AssetConfig{Store: "s3"},
		Auth:           config.AuthConfig{JWTSecret: jwtSecret, TokenTTL: time.Hour},
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newEngine(t *testing.T, cfg config.Config, deps handlers.Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDB(t), deps, cfg)
	return r
}

func send(r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, role domain.Role, profileID string) map[string]string {
	t.Helper()
	tok, err := auth.Issue(jwtSecret, time.Hour, &domain.Account{ID: "acc-" + profileID, Role: role, ProfileID: profileID})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

// --- stub services ---

type countingMint struct{ calls int32 }

func (m *countingMint) GenerateImage(_ context.Context, in services.AchievementRequest) (*services.ImagePreview, error) {
	atomic.AddInt32(&m.calls, 1)
	return &services.ImagePreview{ImageURL: services.PlaceholderPath(in.ExerciseType)}, nil
}

func (m *countingMint) GenerateAndMint(_ context.Context, _ domain.Role, in services.AchievementRequest) (*services.MintResult, error) {
	n := atomic.AddInt32(&m.calls, 1)
	return &services.MintResult{TransactionHash: "0xtx", MintedTo: in.WalletAddress, NFTID: "nft-" + strconv.Itoa(int(n))}, nil
}

func (m *countingMint) MintSigned(_ context.Context, _ domain.Role, in services.AchievementRequest) (*services.MintResult, error) {
	atomic.AddInt32(&m.calls, 1)
	return &services.MintResult{PatientID: in.PatientID, Signer: "wallet"}, nil
}

type echoAnalysis struct{}

func (echoAnalysis) Analyze(_ context.Context, video, _ string) (string, error) {
	return "received " + strconv.Itoa(len(video)) + " bytes", nil
}

const mintBody = `{"walletAddress":"0xabc","exerciseType":"Push-ups","completionScore":90,"difficulty":"Easy","bodyPart":"Chest"}`

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newEngine(t, baseConfig(), handlers.Deps{})

	// /health works
	w := send(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = send(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = send(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), handlers.ErrCodeNotFound) {
		t.Fatalf("GET /nope expected 404, got %d %s", w.Code, w.Body.String())
	}

	// NoMethod → 405 (POST /health)
	if w := send(r, http.MethodPost, "/health", "", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	// Swagger is off unless enabled.
	if w := send(r, http.MethodGet, "/swagger/index.html", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be disabled, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newEngine(t, cfg, handlers.Deps{})

	w := send(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = send(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.test"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin must not be echoed, got %q", got)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := baseConfig()
	cfg.SwaggerEnabled = true
	r := newEngine(t, cfg, handlers.Deps{})

	w := send(r, http.MethodGet, "/swagger/doc.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/nft/generate-and-mint") {
		t.Fatalf("swagger doc misses mint route: %.200s", w.Body.String())
	}
}

func TestRegisterRoutes_StaticArtwork(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, assets.KeyPrefix), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, assets.KeyPrefix, "nft-1.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := baseConfig()
	cfg.Assets = config.AssetConfig{Store: "local", Dir: dir}
	r := newEngine(t, cfg, handlers.Deps{})

	w := send(r, http.MethodGet, "/generated-nfts/nft-1.png", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "png" {
		t.Fatalf("generated image: code=%d body=%q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cross-Origin-Resource-Policy"); got != "cross-origin" {
		t.Fatalf("artwork must be embeddable cross-origin, CORP=%q", got)
	}

	w = send(r, http.MethodGet, services.PlaceholderPath("Squats"), "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<svg") {
		t.Fatalf("placeholder: code=%d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "public") {
		t.Fatalf("placeholder Cache-Control=%q", cc)
	}

	// With the S3 store the directory is not exposed.
	s3 := newEngine(t, baseConfig(), handlers.Deps{})
	if w := send(s3, http.MethodGet, "/generated-nfts/nft-1.png", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("s3 store should not serve local files, got %d", w.Code)
	}
}

func TestRegisterRoutes_AuthGuards(t *testing.T) {
	r := newEngine(t, baseConfig(), handlers.Deps{Mint: &countingMint{}})

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		hdr    map[string]string
		want   int
	}{
		{"anonymous routine", http.MethodPost, "/api/routines", `{}`, nil, http.StatusUnauthorized},
		{"patient routine", http.MethodPost, "/api/routines", `{}`, bearerFor(t, domain.RolePatient, "p1"), http.StatusForbidden},
		{"anonymous progress", http.MethodGet, "/api/patients/p1/progress", "", nil, http.StatusUnauthorized},
		{"anonymous completion", http.MethodPost, "/api/completions", `{}`, nil, http.StatusUnauthorized},
		{"doctor mint-signed", http.MethodPost, "/api/nft/mint-signed", mintBody, bearerFor(t, domain.RoleDoctor, "d1"), http.StatusForbidden},
		{"bad token", http.MethodGet, "/api/exercises", "", map[string]string{"Authorization": "Bearer junk"}, http.StatusUnauthorized},
		// Dashboard service is not wired in this engine.
		{"public exercises", http.MethodGet, "/api/exercises", "", nil, http.StatusInternalServerError},
		{"patient mint-signed", http.MethodPost, "/api/nft/mint-signed", mintBody, bearerFor(t, domain.RolePatient, "p1"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(r, tc.method, tc.path, tc.body, tc.hdr)
			if w.Code != tc.want {
				t.Fatalf("%s %s = %d, want %d (%s)", tc.method, tc.path, w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestRegisterRoutes_MintIsIdempotent(t *testing.T) {
	mint := &countingMint{}
	r := newEngine(t, baseConfig(), handlers.Deps{Mint: mint})
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "mint-1"}

	first := send(r, http.MethodPost, "/api/nft/generate-and-mint", mintBody, hdr)
	if first.Code != http.StatusOK {
		t.Fatalf("first mint: %d %s", first.Code, first.Body.String())
	}
	second := send(r, http.MethodPost, "/api/nft/generate-and-mint", mintBody, hdr)
	if second.Header().Get(middleware.HeaderIdempotentReplay) != "true" {
		t.Fatalf("second mint should be a replay")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs")
	}
	if n := atomic.LoadInt32(&mint.calls); n != 1 {
		t.Fatalf("service ran %d times, want 1", n)
	}

	var env handlers.NFTResponse
	if err := json.Unmarshal(first.Body.Bytes(), &env); err != nil || !env.Success {
		t.Fatalf("envelope: %v %s", err, first.Body.String())
	}
}

func TestRegisterRoutes_CollaboratorLimiter(t *testing.T) {
	cfg := baseConfig()
	cfg.CollabRPS = 0.001
	cfg.CollabBurst = 1
	r := newEngine(t, cfg, handlers.Deps{Mint: &countingMint{}, Analysis: echoAnalysis{}})

	if w := send(r, http.MethodPost, "/api/analyze-video", `{"videoBase64":"AAAA"}`, nil); w.Code != http.StatusOK {
		t.Fatalf("first analysis: %d %s", w.Code, w.Body.String())
	}
	w := send(r, http.MethodPost, "/api/nft/generate-image", mintBody, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second collaborator call: %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" || !strings.Contains(w.Body.String(), "collaborators") {
		t.Fatalf("429 details missing: %v %s", w.Header(), w.Body.String())
	}

	// Non-collaborator routes keep the general budget.
	if w := send(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health after collaborator limit: %d", w.Code)
	}
}

func TestRegisterRoutes_VideoBodyCap(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxBodyBytes = 64
	cfg.MaxVideoBytes = 4096
	r := newEngine(t, cfg, handlers.Deps{Mint: &countingMint{}, Analysis: echoAnalysis{}})

	video := `{"videoBase64":"` + strings.Repeat("A", 1024) + `"}`
	if w := send(r, http.MethodPost, "/api/analyze-video", video, nil); w.Code != http.StatusOK {
		t.Fatalf("video under its own cap: %d %s", w.Code, w.Body.String())
	}

	big := `{"walletAddress":"` + strings.Repeat("a", 128) + `","exerciseType":"Squats"}`
	if w := send(r, http.MethodPost, "/api/nft/generate-image", big, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("oversized mint body: %d", w.Code)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10, map[string]int64{"/upload": 100}))
	echo := func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	}
	r.POST("/echo", echo)
	r.POST("/upload", echo)

	body := "0123456789AB" // 12 bytes
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(body)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("override cap should admit 12 bytes, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

// Smoke test that a request traverses the whole stack over "https".
func TestPipeline_Smoke(t *testing.T) {
	cfg := baseConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	r := newEngine(t, cfg, handlers.Deps{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/brandkit"
	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/middleware"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
	"github.com/renatodap/brandkit-generator-sub000/internal/orchestration"
	"github.com/renatodap/brandkit-generator-sub000/internal/sharing"
	"github.com/renatodap/brandkit-generator-sub000/internal/usage"
)

const testSecret = "handler-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testSecret, userID, "owner@example.com", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, r http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error middleware.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

// --- fakes ---

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	res   *logo.AttemptResult
	err   error

	// started is closed and gate awaited when gate is set
	started chan struct{}
	gate    chan struct{}
}

func (g *fakeGenerator) Generate(_ context.Context, _ logo.Brief) (*logo.AttemptResult, error) {
	if g.gate != nil {
		close(g.started)
		<-g.gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.res, g.err
}

func (g *fakeGenerator) Config() logo.Config { return logo.DefaultConfig() }

type fakeCache struct {
	mu      sync.Mutex
	results map[string]*logo.AttemptResult
	jobs    map[string]*models.Job
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{results: map[string]*logo.AttemptResult{}, jobs: map[string]*models.Job{}}
}

func (c *fakeCache) Get(_ context.Context, fp string) (*logo.AttemptResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[fp], nil
}

func (c *fakeCache) Put(_ context.Context, fp string, res *logo.AttemptResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.results[fp] = res
	return nil
}

func (c *fakeCache) SetJob(_ context.Context, job *models.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *job
	c.jobs[job.ID] = &cp
	return nil
}

func (c *fakeCache) GetJob(_ context.Context, id string) (*models.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jobs[id], nil
}

type fakeQuota struct{ used, limit int }

func (q fakeQuota) CheckQuota(_ context.Context, _ uuid.UUID, _ int) (*usage.QuotaStatus, error) {
	return usage.Evaluate(q.used, q.limit, time.Now().Add(time.Hour)), nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []bool
	failures []orchestration.FailureInput
}

func (r *fakeRecorder) Record(_ context.Context, in models.GenerateLogoInput, result models.GenerateLogoResult, cached bool) (*models.BrandKit, *models.GenerateLogoOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, cached)
	kit := models.NewBrandKit(in.UserID, in.Brief, &result.Result)
	return kit, &models.GenerateLogoOutput{BrandKitID: kit.ID, Score: result.Result.Quality.Score}, nil
}

func (r *fakeRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.recorded...)
}

func (r *fakeRecorder) MarkFailed(_ context.Context, in orchestration.FailureInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, in)
	return nil
}

type fakeStarter struct {
	started []models.GenerateLogoInput
	err     error
}

func (s *fakeStarter) Start(_ context.Context, in models.GenerateLogoInput) error {
	s.started = append(s.started, in)
	return s.err
}

// --- logo handler ---

var goodResult = &logo.AttemptResult{
	Candidate: logo.Candidate{SVGMarkup: `<svg viewBox="0 0 200 200"><circle r="4"/><rect width="2"/></svg>`},
	Quality:   logo.QualityScore{Score: 8.5, Feedback: "strong"},
	Attempt:   1,
}

func validRequest() GenerateLogoRequest {
	return GenerateLogoRequest{
		BusinessName: "Harbor Coffee",
		Description:  "A small roastery serving coffee by the docks",
		Industry:     "food",
		Palette:      logo.ColorPalette{Primary: "#112233", Secondary: "#445566", Accent: "#FFAA00"},
	}
}

type logoFixture struct {
	router   *gin.Engine
	gen      *fakeGenerator
	cache    *fakeCache
	recorder *fakeRecorder
	starter  *fakeStarter
}

func newLogoFixture(quota QuotaChecker) *logoFixture {
	f := &logoFixture{
		gen:      &fakeGenerator{res: goodResult},
		cache:    newFakeCache(),
		recorder: &fakeRecorder{},
		starter:  &fakeStarter{},
	}
	h := NewLogoHandler(f.gen, f.cache, quota, f.recorder, f.starter, 20, zap.NewNop())

	r := gin.New()
	api := r.Group("/api/v1", middleware.Auth(testSecret))
	api.POST("/logos/generate", h.Generate)
	api.POST("/logos/jobs", h.StartJob)
	api.GET("/logos/jobs/:id", h.GetJob)
	f.router = r
	return f
}

func TestGenerate_RunsPipelineAndCaches(t *testing.T) {
	f := newLogoFixture(fakeQuota{used: 0, limit: 20})
	auth := bearer(t, uuid.New())

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", auth, validRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp GenerateLogoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Accepted)
	assert.False(t, resp.Cached)
	assert.Equal(t, goodResult.Candidate.SVGMarkup, resp.BrandKit.LogoSVG)
	assert.NotEmpty(t, resp.BrandKit.Symbols.Primary, "symbols derived from the description")

	assert.Equal(t, 1, f.gen.calls)
	assert.Equal(t, 1, f.cache.puts)
	assert.Equal(t, []bool{false}, f.recorder.recorded)
}

func TestGenerate_ClientDisconnectStillRecordsUsage(t *testing.T) {
	f := newLogoFixture(fakeQuota{used: 0, limit: 20})
	f.gen.started = make(chan struct{})
	f.gen.gate = make(chan struct{})
	auth := bearer(t, uuid.New())

	body, err := json.Marshal(validRequest())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logos/generate", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

	served := make(chan struct{})
	go func() {
		defer close(served)
		f.router.ServeHTTP(httptest.NewRecorder(), req)
	}()

	<-f.gen.started
	cancel()
	<-served
	assert.Empty(t, f.recorder.snapshot())

	close(f.gen.gate)
	require.Eventually(t, func() bool { return len(f.recorder.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{false}, f.recorder.snapshot(), "the abandoned run counts against the quota")

	f.gen.gate = nil
	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", auth, validRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp GenerateLogoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, 1, f.gen.calls)
	assert.Equal(t, []bool{false, true}, f.recorder.snapshot())
}

func TestGenerate_CacheHitSkipsPipelineAndQuota(t *testing.T) {
	f := newLogoFixture(fakeQuota{used: 20, limit: 20})
	req := validRequest()
	f.cache.results[brandkit.Fingerprint(req.brief())] = goodResult

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", bearer(t, uuid.New()), req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp GenerateLogoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Zero(t, f.gen.calls)
	assert.Equal(t, []bool{true}, f.recorder.recorded)
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	f := newLogoFixture(fakeQuota{used: 20, limit: 20})

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", bearer(t, uuid.New()), validRequest())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, middleware.ErrCodeQuotaExceeded, errorCode(t, w))
	assert.Zero(t, f.gen.calls)
}

func TestGenerate_ExhaustionIs422AndRecordsFailure(t *testing.T) {
	f := newLogoFixture(nil)
	f.gen.res = nil
	f.gen.err = &logo.GenerationError{Kind: logo.KindExhaustion, Message: "failed to generate logo", Attempts: 5, Cause: logo.ErrNoMarkup}

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", bearer(t, uuid.New()), validRequest())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, middleware.ErrCodeGenerationFailed, errorCode(t, w))
	require.Len(t, f.recorder.failures, 1)
	assert.Equal(t, "Harbor Coffee", f.recorder.failures[0].BusinessName)
	assert.Zero(t, f.cache.puts)
}

func TestGenerate_CircuitOpenIs503(t *testing.T) {
	f := newLogoFixture(nil)
	f.gen.res = nil
	f.gen.err = &logo.GenerationError{
		Kind:    logo.KindExhaustion,
		Message: "failed to generate logo",
		Cause:   &logo.StageError{Stage: logo.StageTemplating, Err: completion.ErrCircuitOpen},
	}

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", bearer(t, uuid.New()), validRequest())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, middleware.ErrCodeAIServiceUnavailable, errorCode(t, w))
}

func TestGenerate_RejectedCredentialsIs503(t *testing.T) {
	f := newLogoFixture(nil)
	f.gen.res = nil
	f.gen.err = &logo.GenerationError{
		Kind:     logo.KindConfiguration,
		Message:  "logo generation service is not configured correctly",
		Attempts: 1,
		Cause:    &logo.StageError{Stage: logo.StageTemplating, Err: completion.ErrUnauthorized},
	}

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", bearer(t, uuid.New()), validRequest())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, middleware.ErrCodeAIServiceUnavailable, errorCode(t, w))
	assert.NotContains(t, w.Body.String(), "unauthorized")
}

func TestGenerate_RejectsBadInput(t *testing.T) {
	f := newLogoFixture(nil)
	auth := bearer(t, uuid.New())

	req := validRequest()
	req.Palette.Accent = "orange"
	w := do(t, f.router, http.MethodPost, "/api/v1/logos/generate", auth, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error middleware.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, middleware.ErrCodeBadRequest, body.Error.Code)
	assert.Equal(t, "invalid request", body.Error.Message)
	assert.Equal(t, `palette accent color "orange" is not a hex color`, body.Error.Details)

	req = validRequest()
	req.BusinessName = ""
	w = do(t, f.router, http.MethodPost, "/api/v1/logos/generate", auth, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, f.router, http.MethodPost, "/api/v1/logos/generate", "", validRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.gen.calls)
}

func TestGenerate_KeepsProvidedSymbols(t *testing.T) {
	req := validRequest()
	req.Symbols = &logo.SymbolSet{Primary: "anchor", Mood: "calm"}
	b := req.brief()
	assert.Equal(t, "anchor", b.Symbols.Primary)
	assert.Equal(t, "calm", b.Symbols.Mood)
	assert.NotEmpty(t, b.Symbols.Secondary)
}

func TestStartJobAndPoll(t *testing.T) {
	f := newLogoFixture(nil)
	owner := uuid.New()

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/jobs", bearer(t, owner), validRequest())
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.JobQueued, resp.State)
	require.Len(t, f.starter.started, 1)
	assert.Equal(t, resp.JobID, f.starter.started[0].JobID)
	assert.Equal(t, owner, f.starter.started[0].UserID)

	w = do(t, f.router, http.MethodGet, resp.StatusURL, bearer(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var job models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, models.JobQueued, job.State)

	w = do(t, f.router, http.MethodGet, resp.StatusURL, bearer(t, uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "jobs are private to their owner")
}

func TestStartJob_StartFailureMarksJobFailed(t *testing.T) {
	f := newLogoFixture(nil)
	f.starter.err = errors.New("temporal down")

	w := do(t, f.router, http.MethodPost, "/api/v1/logos/jobs", bearer(t, uuid.New()), validRequest())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Len(t, f.starter.started, 1)
	job := f.cache.jobs[f.starter.started[0].JobID]
	require.NotNil(t, job)
	assert.Equal(t, models.JobFailed, job.State)
}

// --- brand kit handler ---

type memoryKits struct {
	kits map[uuid.UUID]*models.BrandKit
}

func (m *memoryKits) Get(_ context.Context, id, userID uuid.UUID) (*models.BrandKit, error) {
	k, ok := m.kits[id]
	if !ok || k.UserID != userID {
		return nil, brandkit.ErrNotFound
	}
	return k, nil
}

func (m *memoryKits) GetPublic(_ context.Context, id uuid.UUID) (*models.BrandKit, error) {
	k, ok := m.kits[id]
	if !ok {
		return nil, brandkit.ErrNotFound
	}
	return k, nil
}

func (m *memoryKits) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]models.BrandKitSummary, error) {
	out := []models.BrandKitSummary{}
	for _, k := range m.kits {
		if k.UserID == userID {
			out = append(out, models.BrandKitSummary{ID: k.ID, BusinessName: k.BusinessName, QualityScore: k.Quality.Score})
		}
	}
	return out, nil
}

func (m *memoryKits) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := m.Get(ctx, id, userID); err != nil {
		return err
	}
	delete(m.kits, id)
	return nil
}

func newBrandKitRouter(store BrandKitStore) *gin.Engine {
	h := NewBrandKitHandler(store, sharing.NewService("share-secret"), time.Hour, zap.NewNop())
	r := gin.New()
	r.GET("/api/v1/share/:token", h.GetShared)
	api := r.Group("/api/v1", middleware.Auth(testSecret))
	api.GET("/brand-kits", h.List)
	api.GET("/brand-kits/:id", h.Get)
	api.GET("/brand-kits/:id/logo.svg", h.LogoSVG)
	api.DELETE("/brand-kits/:id", h.Delete)
	api.POST("/brand-kits/:id/share", h.Share)
	return r
}

func TestBrandKitEndpoints(t *testing.T) {
	owner := uuid.New()
	kit := models.NewBrandKit(owner, validRequest().brief(), goodResult)
	store := &memoryKits{kits: map[uuid.UUID]*models.BrandKit{kit.ID: kit}}
	r := newBrandKitRouter(store)
	path := "/api/v1/brand-kits/" + kit.ID.String()

	t.Run("list", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/v1/brand-kits", bearer(t, owner), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp ListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.BrandKits, 1)
		assert.Equal(t, kit.ID, resp.BrandKits[0].ID)
	})

	t.Run("get by owner", func(t *testing.T) {
		w := do(t, r, http.MethodGet, path, bearer(t, owner), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("get by another user", func(t *testing.T) {
		w := do(t, r, http.MethodGet, path, bearer(t, uuid.New()), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/v1/brand-kits/not-a-uuid", bearer(t, owner), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("logo svg", func(t *testing.T) {
		w := do(t, r, http.MethodGet, path+"/logo.svg", bearer(t, owner), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Equal(t, kit.LogoSVG, w.Body.String())
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
		assert.NotContains(t, w.Header().Get("Content-Security-Policy"), "script-src")
	})

	t.Run("share and open", func(t *testing.T) {
		w := do(t, r, http.MethodPost, path+"/share", bearer(t, owner), nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var token sharing.Token
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))

		w = do(t, r, http.MethodGet, "/api/v1/share/"+token.Value, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var shared models.BrandKit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shared))
		assert.Equal(t, kit.ID, shared.ID)
	})

	t.Run("tampered share token", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/v1/share/"+kit.ID.String()+".9999999999.bogus", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("share by another user", func(t *testing.T) {
		w := do(t, r, http.MethodPost, path+"/share", bearer(t, uuid.New()), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, bearer(t, owner), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = do(t, r, http.MethodDelete, path, bearer(t, owner), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// --- health handler ---

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type events bool

func (e events) Connected() bool { return bool(e) }

func TestHealth(t *testing.T) {
	r := gin.New()
	h := NewHealthHandler(pinger{}, pinger{}, events(true), completion.NewBreaker())
	r.GET("/health", h.Health)
	r.GET("/health/deep", h.DeepHealth)

	w := do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/health/deep", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["nats"])
	assert.Equal(t, "circuit closed", resp.Dependencies["completion_service"])
}

func TestDeepHealth_Degraded(t *testing.T) {
	r := gin.New()
	h := NewHealthHandler(pinger{err: errors.New("connection refused")}, nil, nil, nil)
	r.GET("/health/deep", h.DeepHealth)

	w := do(t, r, http.MethodGet, "/health/deep", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.Dependencies["database"], "connection refused")
	assert.Equal(t, "not configured", resp.Dependencies["redis"])
}

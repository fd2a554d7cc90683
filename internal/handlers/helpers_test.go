package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vrjatclg/Time2Eat/internal/cache"
	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/ordering"
	"github.com/vrjatclg/Time2Eat/internal/storage"
	"github.com/vrjatclg/Time2Eat/internal/store"
	"github.com/vrjatclg/Time2Eat/internal/store/memory"
)

const (
	testSecret   = "test-secret"
	testEmail    = "staff@canteen.test"
	testPassword = "s3cret-pass"
)

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]cache.Record
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: map[string]cache.Record{}}
}

func (m *memIdempotency) Lookup(_ context.Context, pid, clientKey string) (cache.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.keys[pid+"/"+clientKey]
	return rec, ok, nil
}

func (m *memIdempotency) Remember(_ context.Context, pid, clientKey string, rec cache.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[pid+"/"+clientKey]; !ok {
		m.keys[pid+"/"+clientKey] = rec
	}
	return nil
}

type testServer struct {
	router *gin.Engine
	st     *store.Store
	svc    *ordering.Service
	dir    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, _ := memory.New()
	svc := ordering.NewService(st, ordering.Options{})
	dir := t.TempDir()

	require.NoError(t, EnsureStaffAccount(context.Background(), st.Staff, testEmail, testPassword, time.Now()))

	r := NewRouter(Deps{
		Service:     svc,
		Store:       st,
		Images:      storage.NewLocalStore(dir, ""),
		Idempotency: newMemIdempotency(),
		Tokens: TokenConfig{
			Secret:     testSecret,
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		},
		UploadDir: dir,
	})
	return &testServer{router: r, st: st, svc: svc, dir: dir}
}

func (s *testServer) addMenuItem(t *testing.T, id, name, price string, available bool) {
	t.Helper()
	p, err := models.ParseMoney(price)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, s.st.Menu.Insert(context.Background(), models.MenuItem{
		ID: id, Name: name, Price: p, Available: available, CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) (access, refresh string) {
	t.Helper()
	w := s.do(http.MethodPost, "/admin/login", gin.H{"email": testEmail, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, w, &out)
	return out.AccessToken, out.RefreshToken
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type placedOrder struct {
	OrderID     string       `json:"orderId"`
	PaymentCode string       `json:"paymentCode"`
	Idempotent  bool         `json:"idempotent"`
	Order       models.Order `json:"order"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

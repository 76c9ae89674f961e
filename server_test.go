package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/imageingest"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
	"github.com/TurnIfCode/backend-gogo/pkg/readmodel"
	"github.com/TurnIfCode/backend-gogo/pkg/topup"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memTopups struct {
	mu   sync.Mutex
	rows map[string]models.TopupTransaction
}

func (m *memTopups) Create(_ context.Context, t *models.TopupTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = *t
	return nil
}

func (m *memTopups) FindByID(_ context.Context, id string) (models.TopupTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return models.TopupTransaction{}, topup.ErrNotFound
	}
	return t, nil
}

func (m *memTopups) Mutate(_ context.Context, id string, fn topup.MutateFunc) (models.TopupTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return models.TopupTransaction{}, topup.ErrNotFound
	}
	next, _, err := fn(cur)
	if err != nil {
		return models.TopupTransaction{}, err
	}
	m.rows[id] = next
	return next, nil
}

func (m *memTopups) ListByUpdatedAtDesc(_ context.Context) ([]models.TopupTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TopupTransaction, 0, len(m.rows))
	for _, t := range m.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

type memCatalog struct {
	wallets map[string]models.Wallet
	coins   []models.Coin
}

func (m *memCatalog) WalletByUserID(_ context.Context, userID string) (models.Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		return models.Wallet{}, readmodel.ErrWalletNotFound
	}
	return w, nil
}

func (m *memCatalog) CoinsByAmountAsc(_ context.Context) ([]models.Coin, error) {
	return m.coins, nil
}

type testServer struct {
	app    *app
	router *gin.Engine
	topups *memTopups
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := Config{JWTSecret: []byte("test-secret"), JWTTTL: time.Hour, RefreshTTL: time.Hour}
	images := imageingest.New(imageingest.Config{MaxEncodedLen: 64}, 1)
	topups := &memTopups{rows: map[string]models.TopupTransaction{}}
	catalog := &memCatalog{
		wallets: map[string]models.Wallet{
			"u-1": {ID: "w-1", UserID: "u-1", Amount: money.MustParse("10.005"), CoinAmount: money.MustParse("250")},
		},
		coins: []models.Coin{
			{ID: "c-1", CoinAmount: money.MustParse("100"), Price: money.MustParse("15000"), FinalPrice: money.MustParse("14999.995")},
		},
	}
	var seq int
	a := &app{
		cfg:    cfg,
		tokens: newTokenIssuer(cfg),
		images: images,
		topups: topup.NewService(topups, nil, images, topup.Options{NewID: func() string {
			seq++
			return "t-" + string(rune('0'+seq))
		}}),
		wallets: readmodel.NewWalletView(catalog),
		coins:   readmodel.NewCoinCatalog(catalog),
	}
	return &testServer{app: a, router: a.routes(), topups: topups}
}

func (s *testServer) token(t *testing.T, id, username, role string) string {
	t.Helper()
	tok, _, err := s.app.tokens.issue(id, username, role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, r)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.Validation, "v", "v"), http.StatusBadRequest},
		{apperr.New(apperr.Unauthenticated, "u", "u"), http.StatusUnauthorized},
		{topup.ErrForbidden, http.StatusForbidden},
		{topup.ErrNotFound, http.StatusNotFound},
		{topup.ErrAlreadyCancelled, http.StatusConflict},
		{imageingest.ErrInvalidImage, http.StatusUnprocessableEntity},
		{imageingest.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{topup.ErrInvalidImage.Wrap(imageingest.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondErrHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondErr(c, apperr.WrapInternal("query wallet", errors.New("connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decodeEnvelope(t, rec)["error"])

	rec = s.do(http.MethodGet, "/api/me", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired := &tokenIssuer{secret: s.app.tokens.secret, ttl: time.Minute, now: func() time.Time {
		return time.Now().Add(-time.Hour)
	}}
	tok, _, err := expired.issue("u-1", "alice", models.RoleUser)
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/api/me", "", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := &tokenIssuer{secret: []byte("other"), ttl: time.Hour, now: time.Now}
	tok, _, err = other.issue("u-1", "alice", models.RoleUser)
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/api/me", "", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/me", "", s.token(t, "u-1", "alice", models.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "u-1", data["id"])
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, models.RoleUser, data["role"])
}

func TestCreateTopupAcceptsNumbersAndStrings(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "u-1", "alice", models.RoleUser)

	rec := s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":100,"price":"15000.505"}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"price":15000.51`)
	assert.Contains(t, rec.Body.String(), `"coin_amount":100.00`)
	assert.Contains(t, rec.Body.String(), `"status":"Proses"`)

	rec = s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":"0","price":"1"}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "topup_invalid", decodeEnvelope(t, rec)["error"])

	rec = s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":"abc","price":"1"}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/topup", `{"wallet_id":`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeEnvelope(t, rec)["error"])
}

func TestTopupLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "u-1", "alice", models.RoleUser)
	bob := s.token(t, "u-2", "bob", models.RoleUser)

	rec := s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":"100","price":"15000"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeEnvelope(t, rec)["data"].(map[string]interface{})["id"].(string)

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/cancel", "", bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	big := `{"bank_name":"BCA","account_number":"123","image":"data:image/png;base64,` + strings.Repeat("A", 200) + `"}`
	rec = s.do(http.MethodPost, "/api/topup/"+id+"/upload", big, alice)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, s.topups.rows[id].Image)

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/cancel", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Batal"`)

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/cancel", "", alice)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "topup_already_cancelled", decodeEnvelope(t, rec)["error"])

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/upload", `{"bank_name":"BCA","account_number":"123","image":"aGVsbG8="}`, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/topup/missing/cancel", "", alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/topup-list", "", bob)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeEnvelope(t, rec)["data"].([]interface{})
	assert.Len(t, rows, 1)
}

func TestUploadThenApproveOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "u-1", "alice", models.RoleUser)
	admin := s.token(t, "u-9", "admin", models.RoleAdministrator)

	rec := s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":"100","price":"15000"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeEnvelope(t, rec)["data"].(map[string]interface{})["id"].(string)

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/approve", "", admin)
	assert.Equal(t, http.StatusConflict, rec.Code, "approve without proof")

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/upload", `{"bank_name":"BCA","account_number":"123","image":"data:image/png;base64,aGVsbG8="}`, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"bank_name":"BCA"`)

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/approve", "", alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/topup/"+id+"/approve", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Selesai"`)
}

func TestWalletAndCoinEndpoints(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "u-1", "alice", models.RoleUser)

	rec := s.do(http.MethodGet, "/api/wallet/u-1", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":10.01`)
	assert.Contains(t, rec.Body.String(), `"coin_amount":250.00`)

	rec = s.do(http.MethodGet, "/api/wallet/nobody", "", tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "wallet_not_found", decodeEnvelope(t, rec)["error"])

	rec = s.do(http.MethodGet, "/api/coin", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"final_price":15000.00`)
}

func TestFlexString(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.50,"b":"7","c":null}`), &v))
	assert.Equal(t, flexString("12.50"), v.A)
	assert.Equal(t, flexString("7"), v.B)
	assert.Equal(t, flexString(""), v.C)
}

func TestImageRoutesRejectOversizedBodies(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "u-1", "alice", models.RoleUser)

	rec := s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":"100","price":"15000"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeEnvelope(t, rec)["data"].(map[string]interface{})["id"].(string)

	huge := `{"bank_name":"BCA","account_number":"123","image":"` + strings.Repeat("A", 2*bodySlack) + `"}`
	rec = s.do(http.MethodPost, "/api/topup/"+id+"/upload", huge, alice)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "image_too_large", decodeEnvelope(t, rec)["error"])
	assert.Nil(t, s.topups.rows[id].Image)

	rec = s.do(http.MethodPut, "/api/profile/photo", `{"image":"`+strings.Repeat("A", 2*bodySlack)+`"}`, alice)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestErrorMessageOmitsCause(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "u-1", "alice", models.RoleUser)

	rec := s.do(http.MethodPost, "/api/topup", `{"wallet_id":"w-1","coin_amount":"abc","price":"1"}`, tok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid coin_amount", body["message"])
	assert.NotContains(t, rec.Body.String(), "can't convert")
}

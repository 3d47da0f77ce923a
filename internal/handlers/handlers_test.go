package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/9-8-7-6/vito/internal/handlers"
	"github.com/9-8-7-6/vito/internal/ledger"
	"github.com/9-8-7-6/vito/internal/models"
	"github.com/9-8-7-6/vito/internal/routes"
	"github.com/9-8-7-6/vito/internal/store"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := ledger.NewService(mem, zap.NewNop())
	h := handlers.New(svc, mem, testSecret, zap.NewNop())
	srv := httptest.NewServer(routes.New(h, testSecret))
	t.Cleanup(srv.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, mem.CreateUser(context.Background(), &models.User{
		Name: "Tester", Email: "tester@vito.local", Password: string(hash),
	}))
	return srv, mem
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body := bytes.NewBufferString(`{"email":"tester@vito.local","password":"password"}`)
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out handlers.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodGet, "/accounts", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	body := bytes.NewBufferString(`{"email":"tester@vito.local","password":"wrong"}`)
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLedgerFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, srv, http.MethodPost, "/assets", token,
		`{"account":"alice","asset_type":"cash","balance":"100.00"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, srv, http.MethodPost, "/transactions", token,
		`{"type":"EXPENSE","amount":"30.00","asset":"groceries","from_account":"alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var record models.Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	resp.Body.Close()
	assert.NotZero(t, record.ID)
	assert.NotEmpty(t, record.Reference)

	resp = doJSON(t, srv, http.MethodGet, "/accounts/alice", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var account models.Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	resp.Body.Close()
	assert.Equal(t, "70", account.Balance.String())

	resp = doJSON(t, srv, http.MethodDelete, "/transactions/1", token, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, srv, http.MethodGet, "/accounts/alice", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	resp.Body.Close()
	assert.Equal(t, "100", account.Balance.String())
}

func TestErrorStatusMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	t.Run("validation is 400", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/transactions", token,
			`{"type":"EXPENSE","amount":"-5.00","asset":"groceries","from_account":"alice"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("insufficient balance is 422", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/assets", token,
			`{"account":"bob","asset_type":"cash","balance":"10.00"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = doJSON(t, srv, http.MethodPost, "/transactions", token,
			`{"type":"TRANSFER","amount":"50.00","from_account":"bob","to_account":"carol"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("missing transaction is 404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/transactions/999", token, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("duplicate asset type is 409", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/assets", token,
			`{"account":"dora","asset_type":"cash","balance":"1.00"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = doJSON(t, srv, http.MethodPost, "/assets", token,
			`{"account":"dora","asset_type":"cash","balance":"1.00"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

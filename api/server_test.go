package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/venue"
)

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func newTestServer(t *testing.T) (*Server, *venue.Venue) {
	t.Helper()
	owner := uuid.New()
	v := venue.New(owner, nil)
	s := NewServer(v, nil, prometheus.NewRegistry())
	return s, v
}

func TestListIssuersEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/issuers", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body)
}

func TestListIssuersAfterDeployment(t *testing.T) {
	s, v := newTestServer(t)
	_, err := v.DeployIssuer(v.Owner, "Acme SME", "ACM", 1_000_000, uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/issuers", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Acme SME", body[0]["company_name"])
}

func TestDepthAndBestRejectInvalidToken(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/orderbook/not-a-uuid/depth", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/orderbook/not-a-uuid/best", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBestReturnsZeroForEmptyBook(t *testing.T) {
	s, v := newTestServer(t)
	iss, err := v.DeployIssuer(v.Owner, "Acme SME", "ACM", 1_000_000, uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orderbook/"+iss.SecurityToken().String()+"/best", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["bid"]["price"])
	assert.Equal(t, float64(0), body["ask"]["price"])
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeployIssuerRejectsMissingOwnerHeader(t *testing.T) {
	s, _ := newTestServer(t)
	body := jsonBody(t, deployIssuerRequest{CompanyName: "Acme SME", Symbol: "ACM", InitialSupply: 1_000_000, Treasury: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/issuers", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeployIssuerRejectsNonOwnerCaller(t *testing.T) {
	s, _ := newTestServer(t)
	body := jsonBody(t, deployIssuerRequest{CompanyName: "Acme SME", Symbol: "ACM", InitialSupply: 1_000_000, Treasury: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/issuers", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeployIssuerSucceedsForOwner(t *testing.T) {
	s, v := newTestServer(t)
	treasury := uuid.New()
	body := jsonBody(t, deployIssuerRequest{CompanyName: "Acme SME", Symbol: "ACM", InitialSupply: 1_000_000, Treasury: treasury})
	req := httptest.NewRequest(http.MethodPost, "/issuers", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, v.Owner.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme SME", resp["company_name"])
}

func TestDeployIssuerRejectsDuplicateCompanyViaHTTP(t *testing.T) {
	s, v := newTestServer(t)
	_, err := v.DeployIssuer(v.Owner, "Acme SME", "ACM", 1_000_000, uuid.New())
	require.NoError(t, err)

	body := jsonBody(t, deployIssuerRequest{CompanyName: "Acme SME", Symbol: "ACM2", InitialSupply: 1, Treasury: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/issuers", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, v.Owner.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetTradingFeeRejectsNonOwner(t *testing.T) {
	s, _ := newTestServer(t)
	body := jsonBody(t, setTradingFeeRequest{Bps: 30})
	req := httptest.NewRequest(http.MethodPost, "/fee", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSetTradingFeeUpdatesFee(t *testing.T) {
	s, v := newTestServer(t)
	body := jsonBody(t, setTradingFeeRequest{Bps: 30})
	req := httptest.NewRequest(http.MethodPost, "/fee", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, v.Owner.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetTradingFeeRejectsAboveCap(t *testing.T) {
	s, v := newTestServer(t)
	body := jsonBody(t, setTradingFeeRequest{Bps: 1000})
	req := httptest.NewRequest(http.MethodPost, "/fee", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, v.Owner.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetWhitelistRoundTrip(t *testing.T) {
	s, v := newTestServer(t)
	iss, err := v.DeployIssuer(v.Owner, "Acme SME", "ACM", 1_000_000, uuid.New())
	require.NoError(t, err)
	account := uuid.New()

	body := jsonBody(t, setWhitelistRequest{Status: true})
	path := "/issuers/" + iss.SecurityToken().String() + "/whitelist/" + account.String()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, v.Owner.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, iss.IsWhitelisted(account))
}

func TestSetWhitelistRejectsUnknownToken(t *testing.T) {
	s, v := newTestServer(t)
	body := jsonBody(t, setWhitelistRequest{Status: true})
	path := "/issuers/" + uuid.New().String() + "/whitelist/" + uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, v.Owner.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

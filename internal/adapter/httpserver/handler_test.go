package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
)

type fakeLister struct {
	tunnels []domain.RemoteTunnel
	err     error
}

func (f *fakeLister) ListJSON(context.Context) ([]domain.RemoteTunnel, error) {
	return f.tunnels, f.err
}

type fakeConfigs struct {
	cfg *domain.TunnelConfig
	err error
}

func (f *fakeConfigs) Read(string) (*domain.TunnelConfig, error) { return f.cfg, f.err }

func (f *fakeConfigs) ExtractSubdomain(*domain.TunnelConfig) (string, error) {
	return "sub1", nil
}

func testRouter(lister TunnelLister, configs ConfigReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := NewAPI(lister, configs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	api.RegisterRoutes(router)
	return router
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)

	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth(t *testing.T) {
	router := testRouter(&fakeLister{}, &fakeConfigs{})

	rec, body := doGet(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Ok)
}

func TestListTunnels(t *testing.T) {
	lister := &fakeLister{tunnels: []domain.RemoteTunnel{
		{ID: "6ff42ae2-765d-4adf-8112-31c55c1551ef", Name: "app1"},
	}}
	router := testRouter(lister, &fakeConfigs{})

	rec, body := doGet(t, router, "/api/tunnels")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Ok)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var tunnels []domain.RemoteTunnel
	require.NoError(t, json.Unmarshal(data, &tunnels))
	require.Len(t, tunnels, 1)
	assert.Equal(t, "app1", tunnels[0].Name)
}

func TestListTunnelsProviderError(t *testing.T) {
	lister := &fakeLister{err: errors.New("cloudflared not installed")}
	router := testRouter(lister, &fakeConfigs{})

	rec, body := doGet(t, router, "/api/tunnels")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, body.Ok)
	assert.Contains(t, body.Error, "cloudflared not installed")
}

func TestTunnelConfig(t *testing.T) {
	configs := &fakeConfigs{cfg: &domain.TunnelConfig{
		TunnelID: "6ff42ae2-765d-4adf-8112-31c55c1551ef",
		Ingress: []domain.IngressRule{
			{Hostname: "sub1.example.com", Service: "http://localhost:3000"},
			{Service: "http_status:404"},
		},
	}}
	router := testRouter(&fakeLister{}, configs)

	rec, body := doGet(t, router, "/api/tunnels/app1/config")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Ok)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var payload tunnelConfigResponse
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "sub1", payload.Subdomain)
	require.NotNil(t, payload.Config)
	assert.Equal(t, "6ff42ae2-765d-4adf-8112-31c55c1551ef", payload.Config.TunnelID)
}

func TestTunnelConfigNotFound(t *testing.T) {
	router := testRouter(&fakeLister{}, &fakeConfigs{err: domerr.ErrConfigNotFound})

	rec, body := doGet(t, router, "/api/tunnels/ghost/config")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, body.Ok)
}

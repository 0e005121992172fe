package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
)

func testTunnel() domain.Tunnel {
	return domain.Tunnel{
		Name:      "app1",
		RemoteID:  "6ff42ae2-765d-4adf-8112-31c55c1551ef",
		Port:      3000,
		Subdomain: "sub1",
		Hostname:  "sub1.example.com",
	}
}

func TestBuild(t *testing.T) {
	s := New(t.TempDir(), "/home/user/.cloudflared")
	cfg := s.Build(testTunnel())

	assert.Equal(t, "6ff42ae2-765d-4adf-8112-31c55c1551ef", cfg.TunnelID)
	assert.Equal(t, "/home/user/.cloudflared/6ff42ae2-765d-4adf-8112-31c55c1551ef.json", cfg.CredentialsFile)

	require.Len(t, cfg.Ingress, 2)
	assert.Equal(t, "sub1.example.com", cfg.Ingress[0].Hostname)
	assert.Equal(t, "http://localhost:3000", cfg.Ingress[0].Service)
	assert.Empty(t, cfg.Ingress[1].Hostname, "terminal rule has no hostname")
	assert.Equal(t, "http_status:404", cfg.Ingress[1].Service)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "/creds")
	cfg := s.Build(testTunnel())

	require.NoError(t, s.Write("app1", cfg))
	assert.True(t, s.Exists("app1"))
	assert.Equal(t, filepath.Join(dir, "app1.yml"), s.Path("app1"))

	got, err := s.Read("app1")
	require.NoError(t, err)
	assert.Equal(t, &cfg, got)
}

func TestWriteProducesCloudflaredLayout(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "/creds")
	require.NoError(t, s.Write("app1", s.Build(testTunnel())))

	data, err := os.ReadFile(s.Path("app1"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "tunnel: 6ff42ae2-765d-4adf-8112-31c55c1551ef")
	assert.Contains(t, content, "credentials-file: /creds/6ff42ae2-765d-4adf-8112-31c55c1551ef.json")
	assert.Contains(t, content, "hostname: sub1.example.com")
	assert.Contains(t, content, "service: http://localhost:3000")
	assert.Contains(t, content, "service: http_status:404")
}

func TestReadMissing(t *testing.T) {
	s := New(t.TempDir(), "/creds")
	_, err := s.Read("ghost")
	assert.ErrorIs(t, err, domerr.ErrConfigNotFound)
}

func TestExtractSubdomain(t *testing.T) {
	s := New(t.TempDir(), "/creds")

	cfg := s.Build(testTunnel())
	sub, err := s.ExtractSubdomain(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "sub1", sub)

	hostname, err := s.Hostname(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "sub1.example.com", hostname)

	bare := domain.TunnelConfig{Ingress: []domain.IngressRule{{Service: "http_status:404"}}}
	_, err = s.ExtractSubdomain(&bare)
	assert.Error(t, err)

	noDot := domain.TunnelConfig{Ingress: []domain.IngressRule{{Hostname: "localhost", Service: "http://localhost:1"}}}
	_, err = s.ExtractSubdomain(&noDot)
	assert.Error(t, err)
}

func TestRemoveTolerant(t *testing.T) {
	s := New(t.TempDir(), "/creds")
	require.NoError(t, s.Write("app1", s.Build(testTunnel())))

	require.NoError(t, s.Remove("app1"))
	assert.False(t, s.Exists("app1"))

	// Removing an absent artifact is already-clean, not an error.
	assert.NoError(t, s.Remove("app1"))
}

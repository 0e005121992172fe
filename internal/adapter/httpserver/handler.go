package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
)

type response struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// TunnelLister provides the provider's structured tunnel listing.
type TunnelLister interface {
	ListJSON(ctx context.Context) ([]domain.RemoteTunnel, error)
}

// ConfigReader provides access to the stored config artifacts.
type ConfigReader interface {
	Read(name string) (*domain.TunnelConfig, error)
	ExtractSubdomain(cfg *domain.TunnelConfig) (string, error)
}

type tunnelConfigResponse struct {
	Config    *domain.TunnelConfig `json:"config"`
	Subdomain string               `json:"subdomain,omitempty"`
}

type API struct {
	tunnels TunnelLister
	configs ConfigReader
	logger  *slog.Logger
}

func NewAPI(tunnels TunnelLister, configs ConfigReader, logger *slog.Logger) *API {
	return &API{tunnels: tunnels, configs: configs, logger: logger}
}

func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", a.health)
	router.GET("/api/tunnels", a.listTunnels)
	router.GET("/api/tunnels/:name/config", a.tunnelConfig)
}

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true})
}

func (a *API) listTunnels(c *gin.Context) {
	tunnels, err := a.tunnels.ListJSON(c.Request.Context())
	if err != nil {
		a.logger.Warn("tunnel listing failed", "err", err)
		c.JSON(http.StatusBadGateway, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: tunnels})
}

func (a *API) tunnelConfig(c *gin.Context) {
	name := c.Param("name")

	cfg, err := a.configs.Read(name)
	if errors.Is(err, domerr.ErrConfigNotFound) {
		c.JSON(http.StatusNotFound, response{Ok: false, Error: err.Error()})
		return
	}
	if err != nil {
		a.logger.Warn("config read failed", "name", name, "err", err)
		c.JSON(http.StatusInternalServerError, response{Ok: false, Error: err.Error()})
		return
	}

	data := tunnelConfigResponse{Config: cfg}
	// Subdomain is derived, not stored; a malformed artifact just omits it.
	if sub, err := a.configs.ExtractSubdomain(cfg); err == nil {
		data.Subdomain = sub
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: data})
}

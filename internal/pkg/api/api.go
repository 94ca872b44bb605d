package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/common"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
)

// BuildApp assembles the gin engine with the full route surface.
func BuildApp(config *Config) *gin.Engine {
	log.Debug("Building app")
	r := gin.Default()
	r.GET("/api/ping", ping)
	NewAPI(config).Mount(r)
	return r
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func (a *API) version(c *gin.Context) {
	c.JSON(http.StatusOK, apicommon.VersionResponse{Name: "swarmdeck", Version: common.Version()})
}

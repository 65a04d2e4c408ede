package server

import (
	"net/http"

	"github.com/fnproject/formserver/api/version"
	"github.com/gin-gonic/gin"
)

func handleVersion(c *gin.Context) {
	v, err := version.Parsed()
	if err != nil {
		handleErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": v.String()})
}

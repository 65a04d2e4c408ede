package server

import (
	"errors"
	"net/http"

	"github.com/fnproject/formserver/api"
	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html", []byte(indexPage))
}

// handleMessageSubmit waits for the whole body, takes the value after the
// first '=' and overwrites the message store with it. The client is only
// redirected back to the form once the value is stored.
func (s *Server) handleMessageSubmit(c *gin.Context) {
	ctx := c.Request.Context()

	var res common.BodyResult
	select {
	case res = <-common.CollectBody(c.Request.Body):
	case <-ctx.Done():
		handleErrorResponse(c, ctx.Err())
		return
	}
	if res.Err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(res.Err, &tooBig) {
			handleErrorResponse(c, errTooBig{-1, tooBig.Limit})
			return
		}
		if common.IsTimeout(res.Err) {
			common.Logger(ctx).WithError(res.Err).Info("timed out reading form body")
			handleErrorResponse(c, models.ErrRequestTimeout)
			return
		}
		if common.IsClientGone(res.Err) {
			common.Logger(ctx).WithError(res.Err).Info("client went away while sending form body")
			handleErrorResponse(c, models.ErrClientCancel)
			return
		}
		handleErrorResponse(c, res.Err)
		return
	}

	sub, err := models.ParseSubmission(res.Body)
	if err != nil {
		common.Logger(ctx).WithFields(logrus.Fields{"body_bytes": len(res.Body)}).Debug("malformed form body")
		handleErrorResponse(c, err)
		return
	}

	if err := s.messageStore.Put(ctx, sub.Value); err != nil {
		handleErrorResponse(c, err)
		return
	}

	common.Logger(ctx).WithFields(logrus.Fields{"key": sub.Key, "value_bytes": len(sub.Value)}).Info("stored form submission")
	c.Redirect(http.StatusFound, api.IndexPath)
}

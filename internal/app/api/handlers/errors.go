package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/response"
)

// writeError answers with the status and envelope code of err. Internal
// errors are logged and their text is not returned.
func writeError(c *gin.Context, base *zap.SugaredLogger, err error) {
	status, code := billingerr.Classify(err)
	if code == response.APIResponseCodeError {
		logctx.FromGin(c, base).Errorw("request_failed", "path", c.FullPath(), "err", err)
		c.JSON(status, response.ErrorT[any](code, nil))
		return
	}
	c.JSON(status, response.ErrorT[any](code, err.Error()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
}

func businessID(c *gin.Context) string {
	return c.GetString(logctx.GinBusinessIDKey)
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/logger"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	ErrorCode string `json:"errorCode"`
	ErrorName string `json:"errorName"`
	Message   string `json:"message"`
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind.Class {
	case domain.ClassInvalidArgument:
		status = http.StatusBadRequest
	case domain.ClassNotFound:
		status = http.StatusNotFound
	default:
		logger.Errorf("http: %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, errorBody{
		ErrorCode: string(kind.Class),
		ErrorName: kind.Name,
		Message:   err.Error(),
	})
}

// writeBadRequest reports malformed input that never reached the service
func writeBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
		ErrorCode: string(domain.ClassInvalidArgument),
		ErrorName: "Default:InvalidArgument",
		Message:   msg,
	})
}

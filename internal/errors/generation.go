package errors

import (
	"context"
	goerrors "errors"

	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/gin-gonic/gin"
)

// StatusClientClosedRequest is the non-standard status recorded when the caller went away.
const StatusClientClosedRequest = 499

// AbortWithGenerationError maps an error returned by a generation pipeline to a response:
// validation errors become 400, caller cancellation aborts without a body, and everything
// else (including a failed fallback) is a 500.
func AbortWithGenerationError(c *gin.Context, err error) {
	var verr *pipeline.ValidationError
	var ferr *pipeline.FallbackExhaustionError

	switch {
	case goerrors.As(err, &verr):
		details := map[string]interface{}{}
		if verr.Field != "" {
			details["field"] = verr.Field
		}
		AbortWithBadRequest(c, verr.Error(), details)
	case goerrors.Is(err, context.Canceled), goerrors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatus(StatusClientClosedRequest)
	case goerrors.As(err, &ferr):
		AbortWithInternal(c, "generation failed", map[string]interface{}{"provider": ferr.Provider})
	default:
		AbortWithInternal(c, "generation failed", nil)
	}
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgNotFound      = "No task found with that ID"
	msgInternal      = "Something went wrong!"
	msgBodyTooLarge  = "Request body is too large"
	msgMalformedBody = "Invalid request body"
)

// requestError marks client mistakes detected before the service is called.
type requestError struct {
	status int
	msg    string
	err    error
}

func (e *requestError) Error() string { return e.msg + ": " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &requestError{status: http.StatusRequestEntityTooLarge, msg: msgBodyTooLarge, err: err}
	}
	return &requestError{status: http.StatusBadRequest, msg: msgMalformedBody, err: err}
}

// bindBody decodes the JSON body into req. An empty body decodes as {} so
// that a bare POST reports missing fields instead of a parse error.
func bindBody(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return badRequest(err)
	}
	return nil
}

// ErrorHandler is the single boundary that turns handler errors into
// envelopes. Validation and not-found errors pass through verbatim; anything
// else becomes a 500 whose detail is only shown in development.
func ErrorHandler(log zerolog.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err, log, dev)
	}
}

func writeError(c *gin.Context, err error, log zerolog.Logger, dev bool) {
	var (
		ve *dom.ValidationError
		re *requestError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  dto.StatusFail,
			Message: ve.Messages(),
			Errors:  dto.FieldErrors(ve),
		})
	case errors.Is(err, dom.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Status: dto.StatusFail, Message: msgNotFound})
	case errors.As(err, &re):
		resp := dto.ErrorResponse{Status: dto.StatusFail, Message: re.msg}
		if dev {
			resp.Detail = re.err.Error()
		}
		c.JSON(re.status, resp)
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("unhandled error")
		resp := dto.ErrorResponse{Status: dto.StatusError, Message: msgInternal}
		if dev {
			resp.Message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}

// Recovery converts panics into the same 500 envelope. Development
// responses carry the stack.
func Recovery(log zerolog.Logger, dev bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		stack := string(debug.Stack())
		log.Error().
			Str("panic", fmt.Sprint(rec)).
			Str("path", c.Request.URL.Path).
			Str("stack", stack).
			Msg("recovered from panic")

		resp := dto.ErrorResponse{Status: dto.StatusError, Message: msgInternal}
		if dev {
			resp.Message = fmt.Sprint(rec)
			resp.Stack = stack
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	})
}

// BodyLimit caps request bodies at n bytes.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{
		Status:  dto.StatusFail,
		Message: fmt.Sprintf("Can't find %s on this server!", c.Request.URL.RequestURI()),
	})
}

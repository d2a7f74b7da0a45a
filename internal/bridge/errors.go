package bridge

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/workflow"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed bridge call.
type ErrorResponse struct {
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind"`
	Redirect string `json:"redirect,omitempty"`
}

// renderError maps err onto a status code and body. Session failures
// carry only the redirect.
func renderError(c *gin.Context, err error) {
	kind := client.KindOf(err)
	if kind.RequiresLogin() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Kind:     kind.String(),
			Redirect: LoginPath,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case kind == client.KindValidation:
		status = http.StatusBadRequest
	case kind == client.KindTransient && client.StatusOf(err) == http.StatusNotFound:
		status = http.StatusNotFound
	case kind == client.KindTransient, kind == client.KindApplication:
		status = http.StatusBadGateway
	case errors.Is(err, workflow.ErrDisposed):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: client.UserMessage(err),
		Kind:  kind.String(),
	})
}

// badRequest renders a malformed request body.
func badRequest(c *gin.Context, op string) {
	renderError(c, client.Validation(op, "The request could not be read."))
}

// lastErrorMessage is what a snapshot shows for its last failure.
func lastErrorMessage(err error) string {
	if err == nil || client.KindOf(err).RequiresLogin() {
		return ""
	}
	return client.UserMessage(err)
}

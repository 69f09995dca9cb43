// Package api exposes the artifact store over HTTP. Handlers translate
// between JSON and the service layer; status codes come from the service's
// error taxonomy.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sf1tzp/symbology-sub000/store"
)

type apiError struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func respondError(c *gin.Context, err error) {
	status := store.StatusOf(err)

	message := "internal error"
	var serviceErr *store.ServiceError
	if errors.As(err, &serviceErr) && status < http.StatusInternalServerError {
		message = serviceErr.Message
	}

	c.JSON(status, errorEnvelope{Error: apiError{Message: message}})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorEnvelope{Error: apiError{Message: message}})
}

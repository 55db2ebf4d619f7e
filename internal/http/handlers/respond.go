package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError is the per-field entry of the validation errors array.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error responses are a bare message plus, for validation failures, the
// field-by-field breakdown. Success responses carry success:true and the
// payload under its own key (task/tasks/user).

func RespondValidation(ctx *gin.Context, message string, errs []FieldError) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"message": message,
		"errors":  errs,
	})
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusUnauthorized, gin.H{"message": message})
}

func RespondNotFound(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusNotFound, gin.H{"message": message})
}

func RespondInternal(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusInternalServerError, gin.H{"message": message})
}

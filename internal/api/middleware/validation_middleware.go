package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ValidationMiddleware rejects malformed request bodies before they reach a
// handler. The body is restored afterwards so handlers can bind it again.
type ValidationMiddleware struct {
	validator *validator.Validate
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware() *ValidationMiddleware {
	v := validator.New()
	// Reuse the binding tags the DTOs already carry for gin.
	v.SetTagName("binding")
	return &ValidationMiddleware{validator: v}
}

// ValidateRequest validates the request body against the provided struct
func (m *ValidationMiddleware) ValidateRequest(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelType := reflect.TypeOf(model)
		if modelType.Kind() == reflect.Ptr {
			modelType = modelType.Elem()
		}
		modelValue := reflect.New(modelType).Interface()

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if err := json.Unmarshal(bodyBytes, modelValue); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			c.Abort()
			return
		}

		if err := m.validator.Struct(modelValue); err != nil {
			validationErrors, ok := err.(validator.ValidationErrors)
			if !ok {
				log.Error("Validation failed", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				c.Abort()
				return
			}

			fields := make(map[string]string, len(validationErrors))
			for _, fe := range validationErrors {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "validation failed",
				"fields": fields,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

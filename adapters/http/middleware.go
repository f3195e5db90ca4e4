package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authUC "github.com/khoahotran/career-compass/internal/application/usecase/auth"
	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

const (
	GinContextKeyUser      = "currentUser"
	GinContextKeyRequestID = "requestID"
	HeaderRequestID        = "X-Request-ID"
)

// AuthMiddleware resolves the bearer token to a user and stores it on the context.
func AuthMiddleware(authenticate *authUC.AuthenticateUseCase, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Error(apperror.NewUnauthorized("Not authenticated", nil))
			c.Abort()
			return
		}

		u, err := authenticate.Execute(c.Request.Context(), token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(GinContextKeyUser, u)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func GetUserFromGinContext(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(GinContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok && u != nil
}

// ErrorMiddleware renders the last error pushed with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)
		appErr, ok := apperror.As(err)
		if !ok {
			appErr = apperror.NewInternal("unexpected error", err)
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("request_id", c.GetString(GinContextKeyRequestID)),
		}
		if status >= 500 {
			log.Error("Request failed", err, fields...)
		} else {
			log.Warn("Request rejected", append(fields, zap.String("detail", appErr.Details))...)
		}

		if status == 401 {
			c.Header("WWW-Authenticate", "Bearer")
		}
		c.JSON(status, appErr.ToJSON())
	}
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		log.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

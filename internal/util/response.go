package util

import (
	"course_market_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func ErrorWithDetail(c *gin.Context, code int, message, detail string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   detail,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// HandleServiceError 将服务层错误映射为 HTTP 响应
func HandleServiceError(c *gin.Context, err error) {
	if ve, ok := IsValidationError(err); ok {
		ErrorWithDetail(c, http.StatusBadRequest, ve.Message, ve.Detail)
		return
	}

	switch {
	case errors.Is(err, ErrCourseNotFound):
		NotFound(c, "Course not found")
	case errors.Is(err, ErrProgressNotFound):
		NotFound(c, "Course progress not found")
	case errors.Is(err, ErrChapterNotFound):
		NotFound(c, "Chapter not found")
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c, "Unauthorized to modify this resource")
	case errors.Is(err, ErrPurchaseInProgress):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrPresignUnsupported):
		Error(c, http.StatusNotImplemented, err.Error())
	default:
		LogInternalError(c, err)
	}
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CustomErrorHandler renders every unhandled error as the API's JSON error
// envelope.
func CustomErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if message == "" {
		switch code {
		case http.StatusNotFound:
			message = "Không tìm thấy tài nguyên"
		case http.StatusUnauthorized:
			message = "Vui lòng đăng nhập"
		case http.StatusForbidden:
			message = "Không có quyền truy cập"
		case http.StatusBadRequest:
			message = "Yêu cầu không hợp lệ"
		default:
			message = "Lỗi hệ thống"
		}
	}

	c.Logger().Error(err)

	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, map[string]string{"error": message}); err != nil {
		c.Logger().Error(err)
	}
}

package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"nhatro_api/internal/models"
)

// RequirePostQuota gates post creation on the user's active package. It
// attaches the resolved UserPackage to the context for the handler to
// decrement after the post is created.
func RequirePostQuota(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := UserIDFromContext(c)

			var userPackage models.UserPackage
			err := db.
				Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
				First(&userPackage).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return c.JSON(http.StatusForbidden, map[string]string{
						"error":   "no_active_package",
						"message": "Bạn cần mua gói để đăng bài",
					})
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi kiểm tra quyền đăng bài")
			}

			if userPackage.PostsLeft <= 0 {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error":   "no_posts_remaining",
					"message": "Bạn đã sử dụng hết lượt đăng bài, vui lòng nâng cấp gói",
				})
			}

			c.Set("userPackage", &userPackage)
			return next(c)
		}
	}
}

// UserPackageFromContext returns the package resolved by RequirePostQuota.
func UserPackageFromContext(c echo.Context) *models.UserPackage {
	if up, ok := c.Get("userPackage").(*models.UserPackage); ok {
		return up
	}
	return nil
}

// DecrementPostCount burns one post from the package quota. The CASE floor
// keeps posts_left from going below zero even if two requests race past the
// quota check.
func DecrementPostCount(db *gorm.DB, userPackageID uint) error {
	return db.Model(&models.UserPackage{}).
		Where("id = ?", userPackageID).
		UpdateColumn("posts_left", gorm.Expr("CASE WHEN posts_left > 0 THEN posts_left - 1 ELSE 0 END")).
		Error
}

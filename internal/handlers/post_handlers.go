package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"nhatro_api/internal/middleware"
	"nhatro_api/internal/models"
)

type PostHandler struct {
	db *gorm.DB
}

func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{db: db}
}

// CreatePost stores a listing and burns one post from the quota resolved by
// RequirePostQuota.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Thiếu tiêu đề bài đăng")
	}

	userPackage := middleware.UserPackageFromContext(c)
	if userPackage == nil {
		return echo.NewHTTPError(http.StatusForbidden, "Không có quyền đăng bài")
	}

	post := models.Post{
		UserID:      middleware.UserIDFromContext(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Address:     req.Address,
	}
	if err := h.db.Create(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi tạo bài đăng")
	}

	if err := middleware.DecrementPostCount(h.db, userPackage.ID); err != nil {
		c.Logger().Errorf("failed to decrement post count for package %d: %v", userPackage.ID, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"post":      post,
		"postsLeft": userPackage.PostsLeft - 1,
	})
}

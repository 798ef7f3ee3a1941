package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"nhatro_api/internal/middleware"
	"nhatro_api/internal/models"
	"nhatro_api/internal/services"
)

const activePackagesCacheKey = "packages:active"

type PackageHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewPackageHandler(db *gorm.DB, cache *services.RedisCache) *PackageHandler {
	return &PackageHandler{db: db, cache: cache}
}

// ListActivePackages returns the purchasable packages, cheapest first.
func (h *PackageHandler) ListActivePackages(c echo.Context) error {
	packages, err := services.GetOrSet(h.cache, c.Request().Context(), activePackagesCacheKey, 5*time.Minute,
		func() ([]models.PostPackage, error) {
			var pkgs []models.PostPackage
			err := h.db.Where("is_active = ?", true).Order("price asc").Find(&pkgs).Error
			return pkgs, err
		})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi lấy danh sách gói")
	}
	return c.JSON(http.StatusOK, packages)
}

// GetCurrentPackage returns the caller's active package summary.
func (h *PackageHandler) GetCurrentPackage(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var userPackage models.UserPackage
	err := h.db.Preload("Package").
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		First(&userPackage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"hasActivePackage": false,
				"message":          "Bạn chưa có gói đăng bài nào đang hoạt động",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi lấy thông tin gói hiện tại")
	}

	daysLeft := int(math.Ceil(time.Until(userPackage.ExpiresAt).Hours() / 24))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"hasActivePackage": true,
		"package": map[string]interface{}{
			"id":          userPackage.ID,
			"name":        userPackage.Package.Name,
			"postsLeft":   userPackage.PostsLeft,
			"totalPosts":  userPackage.Package.PostLimit,
			"purchasedAt": userPackage.PurchasedAt,
			"expiresAt":   userPackage.ExpiresAt,
			"daysLeft":    daysLeft,
		},
	})
}

// GetPackageHistory lists the caller's purchased packages, newest first.
func (h *PackageHandler) GetPackageHistory(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var history []models.UserPackage
	err := h.db.Preload("Package").Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&history).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi lấy lịch sử gói")
	}
	return c.JSON(http.StatusOK, history)
}

// === Admin handlers ===

// ListPackages returns every package, active or not.
func (h *PackageHandler) ListPackages(c echo.Context) error {
	var packages []models.PostPackage
	if err := h.db.Order("price asc").Find(&packages).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi lấy danh sách gói")
	}
	return c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) GetPackage(c echo.Context) error {
	pkg, err := h.findPackage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) CreatePackage(c echo.Context) error {
	var input PackageInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}
	if input.Name == "" || input.Description == "" || input.Price <= 0 || input.Duration <= 0 || input.PostLimit <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Vui lòng điền đầy đủ thông tin")
	}

	pkg := models.PostPackage{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		PostLimit:   input.PostLimit,
		Features:    input.Features,
		IsActive:    true,
	}
	if err := h.db.Create(&pkg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi tạo gói mới")
	}

	h.invalidateCatalog(c)
	return c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) UpdatePackage(c echo.Context) error {
	pkg, err := h.findPackage(c)
	if err != nil {
		return err
	}

	var input PackageInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}

	if input.Name != "" {
		pkg.Name = input.Name
	}
	if input.Description != "" {
		pkg.Description = input.Description
	}
	if input.Price > 0 {
		pkg.Price = input.Price
	}
	if input.Duration > 0 {
		pkg.Duration = input.Duration
	}
	if input.PostLimit > 0 {
		pkg.PostLimit = input.PostLimit
	}
	if input.Features != nil {
		pkg.Features = input.Features
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}

	if err := h.db.Save(pkg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi cập nhật gói")
	}

	h.invalidateCatalog(c)
	return c.JSON(http.StatusOK, pkg)
}

// DeletePackage soft-deactivates a package. Rows are never removed while
// payments and user packages reference them.
func (h *PackageHandler) DeletePackage(c echo.Context) error {
	pkg, err := h.findPackage(c)
	if err != nil {
		return err
	}

	if err := h.db.Model(pkg).Update("is_active", false).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi xóa gói")
	}

	h.invalidateCatalog(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Gói đã được vô hiệu hóa"})
}

func (h *PackageHandler) findPackage(c echo.Context) (*models.PostPackage, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "ID gói không hợp lệ")
	}

	var pkg models.PostPackage
	if err := h.db.First(&pkg, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Không tìm thấy gói")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi lấy thông tin gói")
	}
	return &pkg, nil
}

func (h *PackageHandler) invalidateCatalog(c echo.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), activePackagesCacheKey)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"nhatro_api/internal/middleware"
	"nhatro_api/internal/models"
	"nhatro_api/internal/services"
)

type PaymentHandler struct {
	db        *gorm.DB
	payments  *services.PaymentService
	clientURL string
}

func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService, clientURL string) *PaymentHandler {
	return &PaymentHandler{db: db, payments: payments, clientURL: clientURL}
}

// CreatePayment records a pending payment for the chosen package and returns
// the signed gateway URL to redirect the buyer to.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}
	if req.PackageID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Thiếu thông tin gói")
	}

	userID := middleware.UserIDFromContext(c)

	result, err := h.payments.CreatePayment(userID, req.PackageID, c.RealIP(), req.BankCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPackageUnavailable):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrOrderIDCollision):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi tạo giao dịch thanh toán")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"paymentUrl": result.PaymentURL,
		"paymentId":  result.PaymentID,
	})
}

// PaymentCallback receives the gateway's signed result and always ends in a
// redirect to the client result page carrying status and message.
func (h *PaymentHandler) PaymentCallback(c echo.Context) error {
	params := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	result := h.payments.HandleCallback(params)

	query := url.Values{}
	query.Set("status", string(result.Status))
	query.Set("message", result.Message)
	return c.Redirect(http.StatusFound, h.clientURL+"/payment-result?"+query.Encode())
}

// VerifyPayment lets the buyer poll the state of their own payment.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	paymentID := c.Param("paymentId")
	userID := middleware.UserIDFromContext(c)

	var payment models.Payment
	err := h.db.Preload("Package").
		Where("uuid = ? AND user_id = ?", paymentID, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Không tìm thấy giao dịch")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Lỗi khi kiểm tra thanh toán")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    payment.Status,
		"package":   payment.Package,
		"amount":    payment.Amount,
		"createdAt": payment.CreatedAt,
	})
}

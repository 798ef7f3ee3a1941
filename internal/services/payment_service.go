package services

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nhatro_api/internal/models"
)

var (
	// ErrPackageUnavailable means the requested package does not exist or was
	// deactivated.
	ErrPackageUnavailable = errors.New("gói không tồn tại hoặc không còn hoạt động")

	// ErrOrderIDCollision means the generated order id already belongs to a
	// payment. The client can simply retry.
	ErrOrderIDCollision = errors.New("trùng mã đơn hàng, vui lòng thử lại")
)

// Callback verification outcomes. Status values match what the client result
// page expects; Outcome is the finer-grained classification kept for audit.
type CallbackStatus string

const (
	CallbackStatusSuccess CallbackStatus = "success"
	CallbackStatusFailed  CallbackStatus = "failed"
	CallbackStatusError   CallbackStatus = "error"
)

const (
	OutcomeSuccess          = "success"
	OutcomeFailed           = "failed"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeUnknownOrder     = "unknown_order"
	OutcomeActivationFailed = "activation_failed"
	OutcomeReplay           = "replay"
)

// CallbackResult is what the callback endpoint redirects the user with.
type CallbackResult struct {
	Status  CallbackStatus
	Outcome string
	OrderID string
	Message string
}

// CreatePaymentResult holds the redirect URL and the public payment id.
type CreatePaymentResult struct {
	PaymentURL string
	PaymentID  string
}

// PaymentService owns the payment lifecycle: building signed gateway
// requests, verifying callbacks, and activating packages.
type PaymentService struct {
	db    *gorm.DB
	vnpay *VNPayService
}

func NewPaymentService(db *gorm.DB, vnpay *VNPayService) *PaymentService {
	return &PaymentService{db: db, vnpay: vnpay}
}

// newOrderID derives a gateway order id from the current timestamp plus a
// short random suffix. Uniqueness is still enforced against the payments
// table before use.
func newOrderID(now time.Time) string {
	var buf [2]byte
	_, _ = rand.Read(buf[:])
	suffix := binary.BigEndian.Uint16(buf[:]) % 1000
	return now.Format("20060102150405") + fmt.Sprintf("%03d", suffix)
}

// CreatePayment validates the package, records a pending Payment and returns
// the signed gateway redirect URL. The amount is always the package price;
// nothing client-supplied enters the parameter set except the bank hint.
// No call to the gateway happens here: the browser redirect performs it.
func (s *PaymentService) CreatePayment(userID uint, packageID uint, clientIP, bankCode string) (*CreatePaymentResult, error) {
	var pkg models.PostPackage
	if err := s.db.First(&pkg, packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageUnavailable
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageUnavailable
	}

	now := time.Now()
	orderID := newOrderID(now)

	var count int64
	if err := s.db.Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrOrderIDCollision
	}

	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	// The payment row is persisted before the URL is handed out so a callback
	// racing the HTTP response can already be matched by order id.
	payment := models.Payment{
		UUID:          uuid.NewString(),
		UserID:        userID,
		PackageID:     packageID,
		Amount:        pkg.Price,
		OrderID:       orderID,
		Status:        models.PaymentStatusPending,
		PaymentMethod: models.PaymentGatewayVNPay,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, err
	}

	params := map[string]string{
		"vnp_Version":   "2.1.0",
		"vnp_Command":   "pay",
		"vnp_TmnCode":   s.vnpay.TmnCode,
		"vnp_Locale":    "vn",
		"vnp_CurrCode":  "VND",
		"vnp_TxnRef":    orderID,
		"vnp_OrderInfo": "Thanh toan goi " + pkg.Name,
		"vnp_OrderType": "billpayment",
		// VNPay expects the amount multiplied by 100
		"vnp_Amount":     strconv.FormatInt(pkg.Price*100, 10),
		"vnp_ReturnUrl":  s.vnpay.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
	}
	if bankCode != "" {
		params["vnp_BankCode"] = bankCode
	}

	return &CreatePaymentResult{
		PaymentURL: s.vnpay.BuildPaymentURL(params),
		PaymentID:  payment.UUID,
	}, nil
}

// HandleCallback verifies a gateway callback and drives the payment state
// machine: pending -> completed on a verified success (followed by package
// activation), pending -> failed otherwise. Terminal payments replay their
// stored outcome; invalid signatures and unknown orders mutate nothing.
func (s *PaymentService) HandleCallback(params map[string]string) CallbackResult {
	received := params[SecureHashParam]
	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == SecureHashParam || k == SecureHashTypeParam {
			continue
		}
		signed[k] = v
	}

	orderID := signed["vnp_TxnRef"]
	payload, _ := json.Marshal(params)

	if received == "" || !s.vnpay.VerifySignature(signed, received) {
		log.Printf("Rejected callback with invalid signature, order %q", orderID)
		s.recordCallback(orderID, OutcomeInvalidSignature, payload)
		return CallbackResult{
			Status:  CallbackStatusError,
			Outcome: OutcomeInvalidSignature,
			OrderID: orderID,
			Message: "Chữ ký không hợp lệ",
		}
	}

	var payment models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Callback for unknown order %q", orderID)
			s.recordCallback(orderID, OutcomeUnknownOrder, payload)
			return CallbackResult{
				Status:  CallbackStatusError,
				Outcome: OutcomeUnknownOrder,
				OrderID: orderID,
				Message: "Không tìm thấy giao dịch",
			}
		}
		return CallbackResult{
			Status:  CallbackStatusError,
			Outcome: OutcomeUnknownOrder,
			OrderID: orderID,
			Message: "Lỗi hệ thống",
		}
	}

	// Gateways retry callbacks; a payment already in a terminal state replays
	// its recorded outcome without touching any state.
	if payment.Terminal() {
		s.recordCallback(orderID, OutcomeReplay, payload)
		return s.replayOutcome(payment)
	}

	responseCode := signed["vnp_ResponseCode"]

	if responseCode == VNPayResponseCodeSuccess {
		updates := map[string]interface{}{
			"status":        models.PaymentStatusCompleted,
			"response_data": json.RawMessage(payload),
		}
		if err := s.db.Model(&payment).Updates(updates).Error; err != nil {
			return CallbackResult{
				Status:  CallbackStatusError,
				Outcome: OutcomeFailed,
				OrderID: orderID,
				Message: "Lỗi hệ thống",
			}
		}
		s.recordCallback(orderID, OutcomeSuccess, payload)

		if _, err := s.ActivatePackage(payment.UserID, payment.PackageID, payment.ID); err != nil {
			// Money has moved but the package did not activate. Keep the
			// failure on the payment so operators can reconcile.
			log.Printf("Package activation failed for order %q: %v", orderID, err)
			s.db.Model(&payment).Update("activation_error", err.Error())
			return CallbackResult{
				Status:  CallbackStatusError,
				Outcome: OutcomeActivationFailed,
				OrderID: orderID,
				Message: "Thanh toán thành công nhưng kích hoạt gói thất bại, vui lòng liên hệ hỗ trợ",
			}
		}

		return CallbackResult{
			Status:  CallbackStatusSuccess,
			Outcome: OutcomeSuccess,
			OrderID: orderID,
			Message: "Thanh toán thành công",
		}
	}

	updates := map[string]interface{}{
		"status":        models.PaymentStatusFailed,
		"response_data": json.RawMessage(payload),
	}
	if err := s.db.Model(&payment).Updates(updates).Error; err != nil {
		return CallbackResult{
			Status:  CallbackStatusError,
			Outcome: OutcomeFailed,
			OrderID: orderID,
			Message: "Lỗi hệ thống",
		}
	}
	s.recordCallback(orderID, OutcomeFailed, payload)

	return CallbackResult{
		Status:  CallbackStatusFailed,
		Outcome: OutcomeFailed,
		OrderID: orderID,
		Message: VNPayResponseMessage(responseCode),
	}
}

// replayOutcome reconstructs the result of an already-terminal payment from
// its stored state.
func (s *PaymentService) replayOutcome(payment models.Payment) CallbackResult {
	switch payment.Status {
	case models.PaymentStatusCompleted:
		if payment.ActivationError != "" {
			return CallbackResult{
				Status:  CallbackStatusError,
				Outcome: OutcomeActivationFailed,
				OrderID: payment.OrderID,
				Message: "Thanh toán thành công nhưng kích hoạt gói thất bại, vui lòng liên hệ hỗ trợ",
			}
		}
		return CallbackResult{
			Status:  CallbackStatusSuccess,
			Outcome: OutcomeSuccess,
			OrderID: payment.OrderID,
			Message: "Thanh toán thành công",
		}
	default:
		message := "Thanh toán thất bại"
		var stored map[string]string
		if len(payment.ResponseData) > 0 {
			if err := json.Unmarshal(payment.ResponseData, &stored); err == nil {
				if code, ok := stored["vnp_ResponseCode"]; ok {
					message = VNPayResponseMessage(code)
				}
			}
		}
		return CallbackResult{
			Status:  CallbackStatusFailed,
			Outcome: OutcomeFailed,
			OrderID: payment.OrderID,
			Message: message,
		}
	}
}

// ActivatePackage atomically supersedes the user's current package with a new
// one: any row still flagged active is deactivated (by is_active alone,
// regardless of expiry) and the new package is inserted, all in a single
// transaction. Callers must guarantee at-most-once per payment; this function
// does not deduplicate.
func (s *PaymentService) ActivatePackage(userID, packageID, paymentID uint) (*models.UserPackage, error) {
	var activated *models.UserPackage

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pkg models.PostPackage
		if err := tx.First(&pkg, packageID).Error; err != nil {
			return fmt.Errorf("gói không tồn tại: %w", err)
		}
		if !pkg.IsActive {
			return errors.New("gói đã ngừng hoạt động")
		}

		if err := tx.Model(&models.UserPackage{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		now := time.Now()
		userPackage := models.UserPackage{
			UserID:      userID,
			PackageID:   packageID,
			PurchasedAt: now,
			ExpiresAt:   now.AddDate(0, 0, pkg.Duration),
			PostsLeft:   pkg.PostLimit,
			IsActive:    true,
			PaymentID:   &paymentID,
		}
		if err := tx.Create(&userPackage).Error; err != nil {
			return err
		}

		activated = &userPackage
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func (s *PaymentService) recordCallback(orderID, outcome string, payload json.RawMessage) {
	record := models.PaymentCallback{
		PaymentGateway: models.PaymentGatewayVNPay,
		OrderID:        orderID,
		Outcome:        outcome,
		Payload:        payload,
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("Failed to record payment callback for order %q: %v", orderID, err)
	}
}

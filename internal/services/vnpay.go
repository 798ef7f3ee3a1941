package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"nhatro_api/internal/config"
)

// VNPayResponseCodeSuccess is the gateway response code for a successful
// transaction (vnp_ResponseCode).
const VNPayResponseCodeSuccess = "00"

// SecureHashParam carries the signature in both redirect and callback
// parameter sets. SecureHashTypeParam is sent by some gateway versions and is
// always excluded from signing.
const (
	SecureHashParam     = "vnp_SecureHash"
	SecureHashTypeParam = "vnp_SecureHashType"
)

// vnpayResponseMessages maps gateway response codes to the user-facing
// decline reasons VNPay documents for them.
var vnpayResponseMessages = map[string]string{
	"07": "Giao dịch bị nghi ngờ gian lận",
	"09": "Thẻ/Tài khoản chưa đăng ký dịch vụ InternetBanking",
	"10": "Xác thực thông tin thẻ/tài khoản không đúng quá 3 lần",
	"11": "Đã hết hạn chờ thanh toán",
	"12": "Thẻ/Tài khoản bị khóa",
	"13": "Nhập sai mật khẩu xác thực giao dịch (OTP)",
	"24": "Khách hàng hủy giao dịch",
	"51": "Tài khoản không đủ số dư để thực hiện giao dịch",
	"65": "Tài khoản đã vượt quá hạn mức giao dịch trong ngày",
	"75": "Ngân hàng thanh toán đang bảo trì",
	"79": "Nhập sai mật khẩu thanh toán quá số lần quy định",
}

// VNPayResponseMessage maps a gateway response code to a human-readable
// failure reason.
func VNPayResponseMessage(code string) string {
	if msg, ok := vnpayResponseMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Giao dịch thất bại với mã lỗi %s", code)
}

// VNPayService builds signed redirect URLs to the VNPay gateway and verifies
// signed callbacks. The signature scheme must stay bit-exact with the
// gateway: parameters sorted by key, values percent-encoded with spaces as
// '+', joined as k=v&..., HMAC-SHA512 over the UTF-8 bytes of that string.
type VNPayService struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
	ReturnURL  string
}

func NewVNPayService(cfg config.Config) *VNPayService {
	return &VNPayService{
		TmnCode:    cfg.VNPTmnCode,
		HashSecret: cfg.VNPHashSecret,
		BaseURL:    cfg.VNPURL,
		ReturnURL:  cfg.VNPReturnURL,
	}
}

// encodeParams serializes params in lexicographic key order with VNPay's
// encoding convention. url.QueryEscape matches it exactly (space becomes +).
// Empty values are omitted, on both the signing and the URL side.
func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func (s *VNPayService) sign(data string) []byte {
	mac := hmac.New(sha512.New, []byte(s.HashSecret))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// SignParams returns the hex-encoded HMAC-SHA512 signature over the encoded
// parameter set.
func (s *VNPayService) SignParams(params map[string]string) string {
	return hex.EncodeToString(s.sign(encodeParams(params)))
}

// BuildPaymentURL returns the full gateway redirect URL: the encoded
// parameter set plus the signature appended as vnp_SecureHash.
func (s *VNPayService) BuildPaymentURL(params map[string]string) string {
	query := encodeParams(params)
	signature := hex.EncodeToString(s.sign(query))
	return s.BaseURL + "?" + query + "&" + SecureHashParam + "=" + signature
}

// VerifySignature recomputes the signature over params (which must no longer
// contain the hash fields) and compares it against the received hex digest in
// constant time.
func (s *VNPayService) VerifySignature(params map[string]string, receivedHex string) bool {
	received, err := hex.DecodeString(strings.ToLower(receivedHex))
	if err != nil {
		return false
	}
	expected := s.sign(encodeParams(params))
	return hmac.Equal(expected, received)
}

package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVNPay() *VNPayService {
	return &VNPayService{
		TmnCode:    "TESTTMN1",
		HashSecret: "JXUKFMQOLFWPBVZXBHGSIFYPVUCCGETA",
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://api.example.com/api/packages/payment-callback",
	}
}

func TestEncodeParams(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":    "20260829101530042",
		"vnp_Amount":    "10000000",
		"vnp_OrderInfo": "Thanh toan goi Goi Co Ban",
		"vnp_BankCode":  "",
	}

	got := encodeParams(params)

	// Keys sorted lexicographically, spaces encoded as '+', empty values dropped.
	assert.Equal(t,
		"vnp_Amount=10000000&vnp_OrderInfo=Thanh+toan+goi+Goi+Co+Ban&vnp_TxnRef=20260829101530042",
		got)
}

func TestSignatureRoundTrip(t *testing.T) {
	svc := testVNPay()
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    svc.TmnCode,
		"vnp_Locale":     "vn",
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     "20260829101530042",
		"vnp_OrderInfo":  "Thanh toan goi Goi Co Ban",
		"vnp_OrderType":  "billpayment",
		"vnp_Amount":     "10000000",
		"vnp_ReturnUrl":  svc.ReturnURL,
		"vnp_IpAddr":     "203.0.113.7",
		"vnp_CreateDate": "20260829101530",
	}

	paymentURL := svc.BuildPaymentURL(params)
	require.True(t, strings.HasPrefix(paymentURL, svc.BaseURL+"?"))

	// A callback carries the same parameters back, URL-decoded by the HTTP
	// layer. Recomputing over them must reproduce the signature byte for byte.
	parsed, err := url.ParseQuery(strings.TrimPrefix(paymentURL, svc.BaseURL+"?"))
	require.NoError(t, err)

	received := parsed.Get(SecureHashParam)
	require.NotEmpty(t, received)

	callbackParams := make(map[string]string)
	for key := range parsed {
		if key == SecureHashParam {
			continue
		}
		callbackParams[key] = parsed.Get(key)
	}

	assert.True(t, svc.VerifySignature(callbackParams, received))
	assert.Equal(t, svc.SignParams(callbackParams), received)
}

func TestVerifySignatureAcceptsUppercaseHex(t *testing.T) {
	svc := testVNPay()
	params := map[string]string{"vnp_TxnRef": "20260829101530042", "vnp_Amount": "10000000"}

	sig := svc.SignParams(params)
	assert.True(t, svc.VerifySignature(params, strings.ToUpper(sig)))
}

func TestVerifySignatureRejectsTamperedParams(t *testing.T) {
	svc := testVNPay()
	params := map[string]string{
		"vnp_TxnRef":       "20260829101530042",
		"vnp_Amount":       "10000000",
		"vnp_ResponseCode": "00",
	}
	sig := svc.SignParams(params)

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"amount changed", func(p map[string]string) { p["vnp_Amount"] = "100" }},
		{"response code changed", func(p map[string]string) { p["vnp_ResponseCode"] = "24" }},
		{"parameter added", func(p map[string]string) { p["vnp_BankCode"] = "NCB" }},
		{"parameter removed", func(p map[string]string) { delete(p, "vnp_ResponseCode") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := make(map[string]string, len(params))
			for k, v := range params {
				mutated[k] = v
			}
			tt.mutate(mutated)
			assert.False(t, svc.VerifySignature(mutated, sig))
		})
	}
}

func TestVerifySignatureRejectsGarbage(t *testing.T) {
	svc := testVNPay()
	params := map[string]string{"vnp_TxnRef": "20260829101530042"}

	assert.False(t, svc.VerifySignature(params, ""))
	assert.False(t, svc.VerifySignature(params, "not-hex"))
}

func TestVNPayResponseMessage(t *testing.T) {
	assert.Equal(t, "Khách hàng hủy giao dịch", VNPayResponseMessage("24"))
	assert.Equal(t, "Tài khoản không đủ số dư để thực hiện giao dịch", VNPayResponseMessage("51"))
	assert.Equal(t, "Giao dịch thất bại với mã lỗi 42", VNPayResponseMessage("42"))
}

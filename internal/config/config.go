package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, loaded from
// environment variables.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	ClientURL   string `mapstructure:"CLIENT_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// VNPay gateway settings
	VNPTmnCode    string `mapstructure:"VNP_TMN_CODE"`
	VNPHashSecret string `mapstructure:"VNP_HASH_SECRET"`
	VNPURL        string `mapstructure:"VNP_URL"`
	VNPReturnURL  string `mapstructure:"VNP_RETURN_URL"`

	// Abandoned checkouts older than this are swept to failed.
	PendingPaymentTTLHours int `mapstructure:"PENDING_PAYMENT_TTL_HOURS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CLIENT_URL", "http://localhost:3000")
	viper.SetDefault("VNP_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	viper.SetDefault("PENDING_PAYMENT_TTL_HOURS", 48)
	viper.AutomaticEnv()

	// Bind explicitly so the keys appear in Unmarshal even when unset
	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL", "REDIS_URL", "CLIENT_URL", "JWT_SECRET",
		"VNP_TMN_CODE", "VNP_HASH_SECRET", "VNP_URL", "VNP_RETURN_URL",
		"PENDING_PAYMENT_TTL_HOURS",
	} {
		_ = viper.BindEnv(key)
	}

	err = viper.Unmarshal(&config)
	return
}

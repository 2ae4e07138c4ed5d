package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.paystack.co", cfg.PaystackBaseURL)
	assert.True(t, cfg.UsingDefaultJWTSecret())
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
}

func TestLoadConfigProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestCallbackURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{PaystackCallbackURL: "https://api.shop.ng/checkout/success"}, "https://api.shop.ng/checkout/success"},
		{"derived", Config{FrontendSuccessURL: "https://shop.ng/success.html"}, "https://shop.ng/checkout/success"},
		{"trailing slash", Config{FrontendSuccessURL: "https://shop.ng/"}, "https://shop.ng/checkout/success"},
		{"missing", Config{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.CallbackURL())
		})
	}
}

func TestMailEnabled(t *testing.T) {
	assert.False(t, Mail{Provider: "gmail"}.Enabled())
	assert.True(t, Mail{Provider: "gmail", GmailUser: "a@b.c", GmailPass: "x"}.Enabled())
	assert.True(t, Mail{Provider: "smtp", SMTPHost: "mail.local"}.Enabled())
}

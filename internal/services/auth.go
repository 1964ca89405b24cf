package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"mibolsillo/internal/core"
)

const otpLength = 6

var ErrInvalidOTP = errors.New("otp must be exactly 6 digits")

// AuthService covers the account-linking endpoints.
type AuthService struct {
	api API
}

func NewAuthService(api API) *AuthService {
	return &AuthService{api: api}
}

// SanitizeOTP keeps digits only and truncates to six, the way the input
// field does while typing.
func SanitizeOTP(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == otpLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidOTP reports whether code is exactly six ASCII digits.
func ValidOTP(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, r := range code {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// VerifyOTP submits a code issued by the bot. The code is sent only when it
// is exactly six digits.
func (s *AuthService) VerifyOTP(ctx context.Context, code string) (core.VerifyOTPResult, error) {
	if !ValidOTP(code) {
		return core.VerifyOTPResult{}, ErrInvalidOTP
	}
	var res core.VerifyOTPResult
	body := map[string]string{"otpCode": code}
	if err := s.api.Post(ctx, "/auth/verify-otp", body, &res); err != nil {
		return core.VerifyOTPResult{}, fmt.Errorf("verify otp: %w", err)
	}
	return res, nil
}

// GetLinkStatus reports whether the account is linked to Telegram.
func (s *AuthService) GetLinkStatus(ctx context.Context) (core.LinkStatus, error) {
	var st core.LinkStatus
	if err := s.api.Get(ctx, "/auth/link-status", nil, &st); err != nil {
		return core.LinkStatus{}, fmt.Errorf("link status: %w", err)
	}
	return st, nil
}

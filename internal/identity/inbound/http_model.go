package inbound

import (
	"net/http"
	"time"

	"github.com/hireline/hireline/internal/pkg/router"
)

// refreshTokenCookie is scoped to /api so the refresh JWT only travels on
// API calls, never on static assets.
const refreshTokenCookie = "refresh_token"

func newAccessCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     router.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func newRefreshCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/api",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func clearedAuthCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: router.AccessTokenCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode},
		{Name: refreshTokenCookie, Value: "", Path: "/api", MaxAge: -1, HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode},
	}
}

type OtpGenerateRequest struct {
	Email string `json:"email"`
}

type OtpGenerateResponse struct{}

func (OtpGenerateResponse) Message() string {
	return "OTP sent to your email."
}

type OtpVerifyRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`

	// Registration fields are optional; when full_name and password are set
	// the account is created in the same call.
	FullName        string `json:"full_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	Role            string `json:"role,omitempty"`
}

type OtpVerifyResponse struct {
	Email  string `json:"email"`
	UserID int64  `json:"user_id,string,omitempty"`
}

func (OtpVerifyResponse) Message() string {
	return "OTP verified successfully."
}

type SignupRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role,omitempty"`
}

type SignupResponse struct {
	UserID int64  `json:"user_id,string"`
	Email  string `json:"email"`
}

func (SignupResponse) Message() string {
	return "Registration successful."
}

func (SignupResponse) StatusCode() int {
	return http.StatusCreated
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID          int64     `json:"user_id,string"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`

	cookies []*http.Cookie
}

func (LoginResponse) Message() string {
	return "Login successful."
}

func (r LoginResponse) Cookies() []*http.Cookie {
	return r.cookies
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out successfully."
}

func (LogoutResponse) Cookies() []*http.Cookie {
	return clearedAuthCookies()
}

type RefreshTokenResponse struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`

	cookies []*http.Cookie
}

func (RefreshTokenResponse) Message() string {
	return "Token refreshed successfully."
}

func (r RefreshTokenResponse) Cookies() []*http.Cookie {
	return r.cookies
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordResponse struct{}

func (ForgotPasswordResponse) Message() string {
	return "If an account with that email exists, we have sent an OTP."
}

type VerifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type VerifyOtpResponse struct{}

func (VerifyOtpResponse) Message() string {
	return "OTP verified, you can reset your password now."
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type ResetPasswordResponse struct{}

func (ResetPasswordResponse) Message() string {
	return "Password has been reset successfully."
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CheckUserResponse struct {
	ID            int64  `json:"id,string"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

type ProfileResponse struct {
	ID            int64     `json:"id,string"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	ResumeURL     string    `json:"resume_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProfileUpdateRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

type ResumeUploadResponse struct {
	ResumeURL string `json:"resume_url"`
}

func (ResumeUploadResponse) Message() string {
	return "Resume uploaded successfully."
}

type AccountResponse struct {
	ID            int64     `json:"id,string"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	ResumeURL     string    `json:"resume_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r AccountsResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type AccountDetailResponse struct {
	Account AccountResponse `json:"account"`
}

package inbound

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/identity/usecase"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for OTP, authentication and profile
// workflows.
type HTTPEndpoint struct {
	uc uc
}

// OtpGenerate issues a verification OTP to the given email.
// @Summary Generate OTP
// @Description Generates a 6-digit OTP and emails it. Re-requesting replaces any previous unconsumed code.
// @Tags Identity, OTP
// @Accept json
// @Produce json
// @Param request body OtpGenerateRequest true "OTP request payload"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/otp/generate [post]
func (h *HTTPEndpoint) OtpGenerate(r *router.Request) (any, error) {
	var req OtpGenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OtpRequest(r.Context(), usecase.OtpRequestInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return OtpGenerateResponse{}, nil
}

// OtpVerify checks a submitted OTP, optionally creating the account.
// @Summary Verify OTP
// @Description Verifies the OTP for an email. When registration fields are present the account is created in the same call.
// @Tags Identity, OTP
// @Accept json
// @Produce json
// @Param request body OtpVerifyRequest true "OTP verification payload"
// @Success 200 {object} router.successResponse{data=OtpVerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "No OTP requested"
// @Failure 409 {object} router.errorResponse "Already verified or account exists"
// @Failure 422 {object} router.errorResponse "Incorrect OTP or validation error"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/otp/verify [post]
func (h *HTTPEndpoint) OtpVerify(r *router.Request) (any, error) {
	var req OtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in := usecase.OtpVerifyInput{
		Email: req.Email,
		Code:  req.Otp,
	}
	if req.FullName != "" || req.Password != "" {
		in.Registration = &usecase.OtpVerifyRegistration{
			FullName:        req.FullName,
			Phone:           req.Phone,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Role:            req.Role,
		}
	}

	resp, err := h.uc.OtpVerify(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return OtpVerifyResponse{
		Email:  resp.Email,
		UserID: resp.UserID,
	}, nil
}

// Signup creates an account for an email with a verified OTP challenge.
// @Summary Register user
// @Description Creates an account. The email must have completed OTP verification first.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body SignupRequest true "Registration payload"
// @Success 201 {object} router.successResponse{data=SignupResponse} "Account created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 403 {object} router.errorResponse "Email not verified"
// @Failure 409 {object} router.errorResponse "Email or phone already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/sign [post]
func (h *HTTPEndpoint) Signup(r *router.Request) (any, error) {
	var req SignupRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Signup(r.Context(), usecase.SignupInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
		IdempotencyKey:  r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return nil, err
	}

	return SignupResponse{
		UserID: resp.UserID,
		Email:  resp.Email,
	}, nil
}

// Login authenticates by email or phone and sets session cookies.
// @Summary Authenticate user
// @Description Validates credentials and returns an access token. Access and refresh tokens are also set as cookies.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 403 {object} router.errorResponse "Email not verified"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		UserID:          resp.UserID,
		Email:           resp.Email,
		Role:            resp.Role,
		AccessToken:     resp.AccessToken,
		AccessExpiresAt: resp.AccessExpiresAt,
		cookies: []*http.Cookie{
			newAccessCookie(resp.AccessToken, resp.AccessExpiresAt),
			newRefreshCookie(resp.RefreshToken, resp.RefreshExpiresAt),
		},
	}, nil
}

// Logout clears the session cookies. It works without a valid access token so
// a browser with an expired session can still drop its refresh cookie.
// @Summary Logout user
// @Description Clears the access and refresh cookies of the current session. No authentication required.
// @Tags Identity, Authentication
// @Produce json
// @Success 200 {object} router.successResponse "Logout result"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context()); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// RefreshToken exchanges the refresh cookie for a new access token.
// @Summary Refresh access token
// @Description Reads the refresh token from its cookie (or the request body) and issues a new access token. On failure both session cookies are cleared.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Success 200 {object} router.successResponse{data=RefreshTokenResponse} "Token refresh result"
// @Failure 401 {object} router.errorResponse "Invalid or expired refresh token"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/refresh-token [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	token := ""
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" && r.Method == http.MethodPost {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := r.DecodeBody(&req); err == nil {
			token = req.RefreshToken
		}
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: token})
	if err != nil {
		return nil, router.WithCookies(err, clearedAuthCookies()...)
	}

	cookies := []*http.Cookie{newAccessCookie(resp.AccessToken, resp.AccessExpiresAt)}
	if resp.RefreshToken != "" {
		cookies = append(cookies, newRefreshCookie(resp.RefreshToken, resp.RefreshExpiresAt))
	}

	return RefreshTokenResponse{
		AccessToken:     resp.AccessToken,
		AccessExpiresAt: resp.AccessExpiresAt,
		cookies:         cookies,
	}, nil
}

// PasswordForgot starts the OTP-gated password reset flow.
// @Summary Request password reset
// @Description Sends a reset OTP when an account exists for the address. The response does not reveal whether it does.
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Forgot password payload"
// @Success 200 {object} router.successResponse "Request accepted"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/forgot-password [post]
func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	var req ForgotPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordForgot(r.Context(), usecase.PasswordForgotInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return ForgotPasswordResponse{}, nil
}

// PasswordResetVerify validates the reset OTP without consuming it.
// @Summary Verify reset OTP
// @Description Checks the reset OTP. On success the challenge is marked verified so the password can be reset.
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Param request body VerifyOtpRequest true "OTP verification payload"
// @Success 200 {object} router.successResponse "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "No OTP requested"
// @Failure 422 {object} router.errorResponse "Incorrect OTP"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/verify-otp [post]
func (h *HTTPEndpoint) PasswordResetVerify(r *router.Request) (any, error) {
	var req VerifyOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordResetVerify(r.Context(), usecase.PasswordResetVerifyInput{
		Email: req.Email,
		Code:  req.Otp,
	}); err != nil {
		return nil, err
	}

	return VerifyOtpResponse{}, nil
}

// PasswordReset overwrites the password after OTP verification.
// @Summary Reset password
// @Description Sets a new password. Only allowed while a verified reset challenge exists for the email.
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset password payload"
// @Success 200 {object} router.successResponse "Reset result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 403 {object} router.errorResponse "OTP verification required"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/reset-password [post]
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req ResetPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Email:       req.Email,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return ResetPasswordResponse{}, nil
}

// PasswordChange changes the password of the authenticated user.
// @Summary Change password
// @Description Verifies the current password and sets a new one.
// @Tags Identity, Password
// @Security BearerAuth
// @Accept json
// @Param request body ChangePasswordRequest true "Change password payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Current password is incorrect"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/change-password [post]
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	var req ChangePasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
}

// CheckUser returns the account behind the presented token.
// @Summary Check current user
// @Description Returns the authenticated account, confirming the session is valid.
// @Tags Identity, Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=CheckUserResponse} "Current user"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/check-user [get]
func (h *HTTPEndpoint) CheckUser(r *router.Request) (any, error) {
	resp, err := h.uc.CheckUser(r.Context())
	if err != nil {
		return nil, err
	}

	return CheckUserResponse{
		ID:            resp.Account.ID,
		Email:         resp.Account.Email,
		FullName:      resp.Account.FullName,
		Role:          resp.Account.Role.String(),
		EmailVerified: resp.Account.EmailVerified,
	}, nil
}

// Profile retrieves the current user's profile details.
// @Summary Get profile
// @Description Returns profile information for the authenticated user.
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile result"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:            resp.Account.ID,
		Email:         resp.Account.Email,
		FullName:      resp.Account.FullName,
		Phone:         resp.Account.Phone,
		Role:          resp.Account.Role.String(),
		EmailVerified: resp.Account.EmailVerified,
		ResumeURL:     resp.Account.ResumeURL,
		CreatedAt:     resp.Account.CreatedAt,
		UpdatedAt:     resp.Account.UpdatedAt,
	}, nil
}

// ProfileUpdate updates the current user's profile.
// @Summary Update profile
// @Description Updates full name and phone for the authenticated user.
// @Tags Identity, Profile
// @Security BearerAuth
// @Accept json
// @Param request body ProfileUpdateRequest true "Profile payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 409 {object} router.errorResponse "Phone already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/profile [put]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
}

// ResumeUpload stores a PDF resume for the current user.
// @Summary Upload resume
// @Description Uploads a PDF resume and records its URL on the account.
// @Tags Identity, Profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "Resume document (PDF)"
// @Success 200 {object} router.successResponse{data=ResumeUploadResponse} "Upload result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Not a PDF or too large"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/user/resume [put]
func (h *HTTPEndpoint) ResumeUpload(r *router.Request) (any, error) {
	ctx := r.Context()

	file, err := r.StreamSingleFile("resume")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close file", "error", err)
		}
	}()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, goerror.NewInvalidFormat()
	}

	resp, err := h.uc.ResumeUpload(ctx, usecase.ResumeUploadInput{
		File:        io.MultiReader(bytes.NewReader(head[:n]), file),
		ContentType: http.DetectContentType(head[:n]),
	})
	if err != nil {
		return nil, err
	}

	return ResumeUploadResponse{ResumeURL: resp.ResumeURL}, nil
}

// UserList returns a list of accounts with optional filters.
// @Summary List accounts
// @Description Returns a paginated list of accounts with optional search and role filters.
// @Tags Identity, Management Users
// @Security BearerAuth
// @Produce json
// @Param search query string false "Search by email or full name"
// @Param role query []string false "Filter by roles (user|employer|admin)"
// @Param sort_by query string false "Sort by email, full_name or updated_at"
// @Param sort_order query string false "Sort order asc or desc"
// @Param size query int false "Pagination size"
// @Param page query int false "Pagination page"
// @Success 200 {object} router.successResponse{data=AccountsResponse} "Account list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/admin/users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{
		Search:    r.GetQuery("search"),
		Roles:     r.GetQueries("role"),
		SortBy:    r.GetQuery("sort_by"),
		SortOrder: r.GetQuery("sort_order"),
		Size:      size,
		Page:      page,
	})
	if err != nil {
		return nil, err
	}

	return AccountsResponse{
		Accounts: lo.Map(resp.Accounts, func(item entity.Account, _ int) AccountResponse {
			return accountToResponse(item)
		}),
		total: resp.Total,
		size:  resp.Size,
		page:  resp.Page,
	}, nil
}

// UserDetail returns a single account by id.
// @Summary Get account detail
// @Description Returns the account with the given id.
// @Tags Identity, Management Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} router.successResponse{data=AccountDetailResponse} "Account detail"
// @Failure 400 {object} router.errorResponse "Invalid path parameter"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/admin/users/{id} [get]
func (h *HTTPEndpoint) UserDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserDetail(r.Context(), usecase.UserDetailInput{ID: id})
	if err != nil {
		return nil, err
	}

	return AccountDetailResponse{Account: accountToResponse(resp.Account)}, nil
}

func accountToResponse(acc entity.Account) AccountResponse {
	return AccountResponse{
		ID:            acc.ID,
		Email:         acc.Email,
		FullName:      acc.FullName,
		Phone:         acc.Phone,
		Role:          acc.Role.String(),
		EmailVerified: acc.EmailVerified,
		ResumeURL:     acc.ResumeURL,
		CreatedAt:     acc.CreatedAt,
		UpdatedAt:     acc.UpdatedAt,
	}
}

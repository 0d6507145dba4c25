package inbound

import (
	"context"

	"github.com/hireline/hireline/internal/identity/usecase"
	"github.com/hireline/hireline/internal/pkg/router"
)

type uc interface {
	OtpRequest(ctx context.Context, in usecase.OtpRequestInput) error
	OtpVerify(ctx context.Context, in usecase.OtpVerifyInput) (*usecase.OtpVerifyOutput, error)

	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.SignupOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)
	CheckUser(ctx context.Context) (*usecase.CheckUserOutput, error)

	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) error
	PasswordResetVerify(ctx context.Context, in usecase.PasswordResetVerifyInput) error
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error
	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) error
	ResumeUpload(ctx context.Context, in usecase.ResumeUploadInput) (*usecase.ResumeUploadOutput, error)

	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserDetail(ctx context.Context, in usecase.UserDetailInput) (*usecase.UserDetailOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// OTP Verification
	r.POST("/api/otp/generate", end.OtpGenerate)
	r.POST("/api/otp/verify", end.OtpVerify)
	r.GET("/api/otp/refresh-token", end.RefreshToken)
	r.POST("/api/otp/refresh-token", end.RefreshToken)

	// Auth & Session
	r.POST("/api/user/sign", end.Signup)
	r.POST("/api/user/login", end.Login)
	r.POST("/api/user/logout", end.Logout)
	r.GET("/api/user/refresh-token", end.RefreshToken)
	r.POST("/api/user/refresh-token", end.RefreshToken)
	r.GET("/api/user/check-user", end.CheckUser) // need authenticated

	// Password Management
	r.POST("/api/user/forgot-password", end.PasswordForgot)
	r.POST("/api/user/verify-otp", end.PasswordResetVerify)
	r.POST("/api/user/reset-password", end.PasswordReset)
	r.POST("/api/user/change-password", end.PasswordChange) // need authenticated

	// User Profile (need authenticated)
	r.GET("/api/user/profile", end.Profile)
	r.PUT("/api/user/profile", end.ProfileUpdate)
	r.PUT("/api/user/resume", end.ResumeUpload)

	// User Directory (need authenticated & authorization)
	r.GET("/api/admin/users", end.UserList)
	r.GET("/api/admin/users/:id", end.UserDetail)
}

package entity

import (
	"time"
)

type Account struct {
	ID            int64
	FullName      string
	Email         string
	Phone         string // empty when not provided
	Role          Role
	EmailVerified bool
	ResumeURL     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type NewAccount struct {
	ID            int64
	FullName      string
	Email         string
	Phone         string
	Role          Role
	EmailVerified bool
}

// AccountLoginInfo carries the subset of account data needed to authenticate.
type AccountLoginInfo struct {
	ID            int64
	Email         string
	Role          Role
	EmailVerified bool
	Password      string // hashed
}

type AccountCredential struct {
	AccountID int64
	Password  string // hashed
	UpdatedAt time.Time
}

type AccountListFilter struct {
	IsFilterBySearch bool
	IsFilterByRole   bool
	Search           string
	Roles            []int16
	Size             int32
	Offset           int32
	OrderBy          string
	OrderDirection   string
}

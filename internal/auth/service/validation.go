package service

import (
	"github.com/yaddak/yaddak/internal/common/validation"
)

type RegisterInput struct {
	UserName  string `json:"user_name" validate:"required,min=3,max=32,username"`
	UserEmail string `json:"user_email" validate:"required,email,max=254"`
	Password  string `json:"user_pass" validate:"required,min=6,max=128"`
}

type LoginInput struct {
	UserName string `json:"user_name" validate:"required,max=32"`
	Password string `json:"user_pass" validate:"required,max=128"`
}

// UpdateInput replaces name and email. Password must match the current
// credential and is re-derived under the new name.
type UpdateInput struct {
	UserName  string `json:"user_name" validate:"required,min=3,max=32,username"`
	UserEmail string `json:"user_email" validate:"required,email,max=254"`
	Password  string `json:"user_pass" validate:"required,min=6,max=128"`
}

func (in RegisterInput) Validate() error { return validation.Struct(in) }

func (in LoginInput) Validate() error { return validation.Struct(in) }

func (in UpdateInput) Validate() error { return validation.Struct(in) }

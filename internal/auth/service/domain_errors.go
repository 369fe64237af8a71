package service

import (
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.ErrInvalidCredential.WithMessage("invalid user name or password")

	ErrUserNameTaken = commonerrors.ErrAlreadyExists.WithMessage("user name is already used")

	ErrUserEmailTaken = commonerrors.ErrAlreadyExists.WithMessage("user email is already used")
)

package service

import "errors"

// 领域错误，handler 用 errors.Is 映射到响应码
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("already exists")
	ErrNotAssigned       = errors.New("booking not assigned to this technician")
)

package domain

import (
	"errors"
	"fmt"
)

// AuthError 鉴权失败，整个运行无法继续
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Message
}

// APIError 交易所/行情接口返回的业务错误
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	if e.Op == "" {
		return "api: " + e.Message
	}
	return fmt.Sprintf("api %s: %s", e.Op, e.Message)
}

// ValidationError 输入不合法（配置、交易对、订单参数）
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsAPIError(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

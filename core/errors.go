package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - 配置错误：CONFIGURATION（空目录、非法的因子维度/迭代次数）
//   - 查询错误：NOT_FOUND（种子书籍不存在）、INVALID_INPUT（评分阈值无法解析）
//   - 数值错误：NUMERICAL（ALS 求解时矩阵奇异）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "NUMERICAL"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "model", "store"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 推荐引擎错误代码
	ErrorCodeConfiguration = "CONFIGURATION" // 构造参数非法
	ErrorCodeNumerical     = "NUMERICAL"     // 数值计算失败
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleCatalog = "catalog" // 书目模块
	ModuleModel   = "model"   // 矩阵/ALS 模块
	ModuleRecall  = "recall"  // 召回模块
	ModuleFilter  = "filter"  // 过滤模块
	ModuleEngine  = "engine"  // 引擎门面
	ModuleConfig  = "config"  // 配置模块
)

// NewConfigurationError 创建 CONFIGURATION 错误。
func NewConfigurationError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeConfiguration, fmt.Sprintf(format, args...))
}

// NewNotFoundError 创建 NOT_FOUND 错误。
func NewNotFoundError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeNotFound, fmt.Sprintf(format, args...))
}

// NewInvalidArgumentError 创建 INVALID_INPUT 错误。
func NewInvalidArgumentError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidInput, fmt.Sprintf(format, args...))
}

// NewNumericalError 创建 NUMERICAL 错误。
func NewNumericalError(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeNumerical, fmt.Sprintf(format, args...))
}

// WithCause 附加底层错误并返回自身，便于链式构造。
func (e *DomainError) WithCause(err error) *DomainError {
	e.Err = err
	return e
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsConfiguration 检查错误是否为 CONFIGURATION
func IsConfiguration(err error) bool {
	return hasCode(err, ErrorCodeConfiguration)
}

// IsInvalidArgument 检查错误是否为 INVALID_INPUT
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsNumerical 检查错误是否为 NUMERICAL
func IsNumerical(err error) bool {
	return hasCode(err, ErrorCodeNumerical)
}

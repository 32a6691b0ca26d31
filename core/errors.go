package core

import "fmt"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），HTTP 层据此映射状态码
//
// 错误分类（对应请求处理的四种结局）：
//   - 输入校验错误（INVALID_DIMENSION / MISSING_FIELD）：拒绝请求，附期望值与实际值
//   - 上游协作方错误（UPSTREAM_FAILURE / UNPARSEABLE_RESPONSE）：该请求失败，不影响共享状态
//   - 启动期错误（MODEL_LOAD / CONFIG）：进程不得开始服务
//   - 尽力而为子步骤（实体链接、单视频主题分类）不产生 DomainError，静默降级为空贡献
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_DIMENSION"）
	Message string // 错误消息
	Module  string // 模块名称（如 "tower", "model", "service"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
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
	// 输入校验
	ErrorCodeInvalidDimension = "INVALID_DIMENSION" // 向量维度不符合约定
	ErrorCodeMissingField     = "MISSING_FIELD"     // 必填字段缺失

	// 上游协作方
	ErrorCodeUpstreamFailure     = "UPSTREAM_FAILURE"     // 上游服务不可达或返回错误
	ErrorCodeUnparseableResponse = "UNPARSEABLE_RESPONSE" // 上游响应无法解析为数值序列

	// 启动期
	ErrorCodeModelLoad = "MODEL_LOAD" // 模型权重文件缺失/损坏
	ErrorCodeConfig    = "CONFIG"     // 必需配置（密钥、路径）缺失

	// 通用
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误（不泄漏细节）
)

// 模块名称常量
const (
	ModuleTower   = "tower"   // 塔（通道/内容表示）模块
	ModuleModel   = "model"   // 本地推理模块
	ModuleRerank  = "rerank"  // 热力图重排模块
	ModuleService = "service" // 外部服务模块
	ModuleStore   = "store"   // 存储模块
	ModuleConfig  = "config"  // 配置模块
)

// NewDimensionError 创建维度校验错误，消息中同时给出期望维度与实际维度。
func NewDimensionError(module, name string, want, got int) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidDimension,
		fmt.Sprintf("expected %s dim %d, got %d", name, want, got))
}

// NewUpstreamError 创建上游协作方错误。
func NewUpstreamError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeUpstreamFailure, message)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidDimension 检查错误是否为 INVALID_DIMENSION
func IsInvalidDimension(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidDimension
	}
	return false
}

// IsValidationError 检查错误是否属于输入校验类（HTTP 层映射为 400）
func IsValidationError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidDimension || domainErr.Code == ErrorCodeMissingField
	}
	return false
}

// IsUpstreamError 检查错误是否属于上游协作方类（HTTP 层映射为 502）
func IsUpstreamError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUpstreamFailure || domainErr.Code == ErrorCodeUnparseableResponse
	}
	return false
}

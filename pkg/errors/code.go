package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

const (
	serviceShared    = 0
	serviceAssistant = 20
)

const (
	categoryRequest   = 1
	categoryResource  = 4
	categoryRateLimit = 6
	categoryInternal  = 7
	categoryDatabase  = 8
	categoryNetwork   = 10
)

// MakeCode packs service, category and sequence into AABBCCC.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

// OK is code 0.
var OK = Register(New(0, http.StatusOK, codes.OK, "Success", "成功"))

// 通用错误码
var (
	ErrInvalidParam    = Register(New(MakeCode(serviceShared, categoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "Invalid parameter", "参数无效"))
	ErrRequestTooLarge = Register(New(MakeCode(serviceShared, categoryRequest, 5), http.StatusRequestEntityTooLarge, codes.InvalidArgument, "Request entity too large", "请求体过大"))
	ErrNotFound        = Register(New(MakeCode(serviceShared, categoryResource, 0), http.StatusNotFound, codes.NotFound, "Resource not found", "资源不存在"))
	ErrTooManyRequests = Register(New(MakeCode(serviceShared, categoryRateLimit, 0), http.StatusTooManyRequests, codes.ResourceExhausted, "Too many requests", "请求过于频繁"))
	ErrInternal        = Register(New(MakeCode(serviceShared, categoryInternal, 0), http.StatusInternalServerError, codes.Internal, "Internal server error", "服务器内部错误"))
	ErrPanic           = Register(New(MakeCode(serviceShared, categoryInternal, 2), http.StatusInternalServerError, codes.Internal, "Service panic", "服务异常"))
	ErrDatabase        = Register(New(MakeCode(serviceShared, categoryDatabase, 0), http.StatusInternalServerError, codes.Internal, "Database error", "数据库错误"))
)

// 助手服务错误码 (AA=20)
var (
	ErrScanRejected  = Register(New(MakeCode(serviceAssistant, categoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "File rejected by virus scan", "文件未通过病毒扫描"))
	ErrEmptyFilename = Register(New(MakeCode(serviceAssistant, categoryRequest, 3), http.StatusBadRequest, codes.InvalidArgument, "Filename is required", "文件名不能为空"))

	ErrPluginNotFound     = Register(New(MakeCode(serviceAssistant, categoryResource, 1), http.StatusNotFound, codes.NotFound, "Plugin not found", "插件不存在"))
	ErrCapabilityNotFound = Register(New(MakeCode(serviceAssistant, categoryResource, 2), http.StatusNotFound, codes.NotFound, "Plugin function not found", "插件函数不存在"))

	ErrGeneration = Register(New(MakeCode(serviceAssistant, categoryInternal, 1), http.StatusInternalServerError, codes.Internal, "Text generation failed", "文本生成失败"))
	ErrIOFailure  = Register(New(MakeCode(serviceAssistant, categoryInternal, 2), http.StatusInternalServerError, codes.Internal, "File I/O failed", "文件读写失败"))
	ErrEncryption = Register(New(MakeCode(serviceAssistant, categoryInternal, 3), http.StatusInternalServerError, codes.Internal, "Encryption failed", "加密失败"))

	// The not-loaded chat reply is a 500, not 503.
	ErrModelUnavailable = Register(New(MakeCode(serviceAssistant, categoryNetwork, 1), http.StatusInternalServerError, codes.Unavailable, "Language model not loaded", "语言模型未加载"))
	ErrAutomationFailed = Register(New(MakeCode(serviceAssistant, categoryNetwork, 3), http.StatusBadGateway, codes.Unavailable, "Automation request failed", "自动化请求失败"))
)

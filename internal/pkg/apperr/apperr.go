// Package apperr 对话编排相关的错误分类
//
// 每个错误都带有一个机器可读的 Kind，HTTP 层据此映射状态码，
// 任何一种错误都不会被静默吞掉。
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	// KindConversationNotFound 对话不存在
	KindConversationNotFound Kind = "conversation_not_found"
	// KindAdapter 与外部助手通信失败（网络/协议/响应结构异常）
	KindAdapter Kind = "adapter_error"
	// KindRunFailed 外部助手报告 run 失败
	KindRunFailed Kind = "assistant_run_failed"
	// KindTimeout 轮询次数耗尽仍未结束
	KindTimeout Kind = "assistant_timeout"
	// KindPersistence 存储读写失败
	KindPersistence Kind = "persistence_error"
)

// Error 结构化错误
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// ConversationNotFound 对话不存在
func ConversationNotFound(id string) *Error {
	return &Error{
		Kind:    KindConversationNotFound,
		Message: "conversation not found",
		Detail:  id,
	}
}

// Adapter 外部助手调用失败
func Adapter(msg string, cause error) *Error {
	return &Error{Kind: KindAdapter, Message: msg, Cause: cause}
}

// RunFailed run 以失败结束，detail 为外部助手给出的失败原因
func RunFailed(detail string) *Error {
	return &Error{
		Kind:    KindRunFailed,
		Message: "assistant failed to process message",
		Detail:  detail,
	}
}

// Timeout run 未在轮询上限内结束
func Timeout(msg string, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: msg, Cause: cause}
}

// Persistence 存储失败
func Persistence(msg string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Cause: cause}
}

// KindOf 取出错误链上最外层的 Kind
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

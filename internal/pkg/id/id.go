package id

import (
	"strings"

	"github.com/google/uuid"
)

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// Short 生成8位短ID，用于日志或外部标识后缀
func Short() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// IsValid 验证UUID格式是否有效
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

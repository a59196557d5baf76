package mailer

import (
	"context"
	"errors"
	"sync"
)

// MockClient 可配置的邮件客户端 mock，实现 Client 接口
type MockClient struct {
	mu   sync.Mutex
	Sent []*Message
	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
	// FailAlways 置为 true 时，每次调用都返回 mock 错误
	FailAlways bool
}

// NewMockClient 创建邮件 mock 客户端
func NewMockClient() *MockClient {
	return &MockClient{}
}

var errMockSend = errors.New("mock mail send failure")

// Send 记录消息；按配置返回失败
func (m *MockClient) Send(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAlways {
		return errMockSend
	}
	if m.FailNext {
		m.FailNext = false
		return errMockSend
	}

	m.Sent = append(m.Sent, msg)
	return nil
}

// SentCount 已成功发送的消息数
func (m *MockClient) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

package mailer

import "context"

// Message 一封待发送的通知邮件
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Client 邮件发送客户端接口
// 真实实现为 HTTP API 供应商（见 http.go）；测试使用 MockClient
type Client interface {
	// Send 发送邮件，失败返回错误
	// 供应商侧或网络层的失败都属于瞬时故障，由调用方决定是否重试
	Send(ctx context.Context, msg *Message) error
}

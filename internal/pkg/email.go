package pkg

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string // 发件人邮箱
	Password string // 授权码/密码
	From     string // 显示的发件人，可与 Username 相同
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func EmailCodeHTML(code string, ttl time.Duration) string {
	minM := int(ttl.Minutes())
	return fmt.Sprintf(`<p>您好，</p><p>您的 Burrow Hole 验证码为：<b style="font-size:18px;">%s</b>。</p><p>有效期 %d 分钟，请勿泄露给他人。</p>`, code, minM)
}

// SMTPMailer 发验证码邮件
type SMTPMailer struct {
	cfg SMTPConfig
	ttl time.Duration
}

func NewSMTPMailer(cfg SMTPConfig, ttl time.Duration) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, ttl: ttl}
}

// SendCode gomail 不支持 ctx，这里只在发送前检查一次
func (m *SMTPMailer) SendCode(ctx context.Context, address, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return SendEmail(m.cfg, address, "Burrow Hole 验证码", EmailCodeHTML(code, m.ttl))
}

package service

import (
	"fmt"

	"github.com/Deekshap16/Instaclone/config"

	mail "gopkg.in/mail.v2"
)

// EmailService 负责发送系统邮件
type EmailService struct {
	smtpHost string
	smtpPort int
	username string
	password string
}

func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost: config.AppConfig.SMTPHost,
		smtpPort: config.AppConfig.SMTPPort,
		username: config.AppConfig.SMTPUsername,
		password: config.AppConfig.SMTPPassword,
	}
}

// SendWelcomeEmail 向新注册用户发送欢迎邮件
func (s *EmailService) SendWelcomeEmail(email, username string) error {
	if s.username == "" || s.password == "" {
		// 未配置SMTP时跳过发送
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "欢迎加入 Instaclone")
	m.SetBody("text/html", fmt.Sprintf(`
        <h2>你好，%s！</h2>
        <p>欢迎加入 Instaclone。现在就去发布你的第一张照片，关注你感兴趣的人吧。</p>
        <p><a href="%s">打开 Instaclone</a></p>
    `, username, config.AppConfig.FrontendURL))

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	return d.DialAndSend(m)
}

package service

import (
	"fmt"

	"expensetracker/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务（预算超支提醒）
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBudgetAlert 发送类别超支提醒邮件
// month 为 YYYY-MM 格式
func (s *EmailService) SendBudgetAlert(username, category, month string, spent, budget float64) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}
	if s.cfg.To == "" {
		return fmt.Errorf("未配置提醒邮件收件人")
	}

	subject := fmt.Sprintf("【记账系统】%s 类别 %s 已超出预算", month, category)
	body := s.generateBudgetAlertBody(username, category, month, spent, budget)

	return s.sendEmail(s.cfg.To, subject, body)
}

// generateBudgetAlertBody 生成超支提醒邮件内容
func (s *EmailService) generateBudgetAlertBody(username, category, month string, spent, budget float64) string {
	over := spent - budget
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #dc2626, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .stats { background: #fef2f2; border-left: 4px solid #dc2626; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .stats p { margin: 4px 0; color: #7f1d1d; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚠️ 预算超支提醒</h1>
        </div>
        <div class="content">
            <p>用户 <strong>%s</strong>，您好！</p>
            <p>您在 <strong>%s</strong> 的 <strong>%s</strong> 类别消费已超出当月预算：</p>
            <div class="stats">
                <p>预算上限：%.2f</p>
                <p>已消费：%.2f</p>
                <p>超出：%.2f</p>
            </div>
            <p>建议检查近期消费记录，合理控制支出。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 记账系统 - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, username, month, category, budget, spent, over)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件，用于验证邮件配置
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【记账系统】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明邮件服务配置正确。</p>
    <p style="color: #666;">—— 记账系统</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}

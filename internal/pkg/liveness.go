package pkg

import (
	"context"
	"errors"
	"net"
	"strings"

	emailverifier "github.com/AfterShip/email-verifier"
	"go.uber.org/zap"

	"Burrow_Hole/pkg/logger"
)

// AddressVerifier 由 *emailverifier.Verifier 实现，按步骤调用以便区分永久失败和临时故障
type AddressVerifier interface {
	ParseAddress(email string) emailverifier.Syntax
	IsRoleAccount(username string) bool
	IsDisposable(domain string) bool
	CheckMX(domain string) (*emailverifier.Mx, error)
	CheckSMTP(domain, username string) (*emailverifier.SMTP, error)
}

// LivenessChecker 判断邮箱是否可投递：语法、一次性邮箱/角色账号、MX 记录、SMTP RCPT 校验
type LivenessChecker struct {
	Verifier  AddressVerifier
	SMTPCheck bool
}

func NewLivenessChecker(smtpCheck bool) *LivenessChecker {
	v := emailverifier.NewVerifier()
	if smtpCheck {
		v = v.EnableSMTPCheck()
	}
	return &LivenessChecker{Verifier: v, SMTPCheck: smtpCheck}
}

// IsLive 明确不可投递返回 false,nil；DNS 临时故障等返回 error
func (c *LivenessChecker) IsLive(ctx context.Context, address string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	syntax := c.Verifier.ParseAddress(address)
	if !syntax.Valid || !strings.Contains(syntax.Domain, ".") {
		return false, nil
	}
	username, domain := strings.ToLower(syntax.Username), strings.ToLower(syntax.Domain)
	if c.Verifier.IsRoleAccount(username) || c.Verifier.IsDisposable(domain) {
		return false, nil
	}

	mx, err := c.Verifier.CheckMX(domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return false, nil
		}
		return false, err
	}
	if mx == nil || !mx.HasMXRecord || nullMX(mx.Records) {
		return false, nil
	}
	if !c.SMTPCheck {
		return true, nil
	}

	// 连不上或被拒绝握手都算结果不确定，按可达处理
	smtp, err := c.Verifier.CheckSMTP(domain, username)
	if err != nil {
		logger.Debug("smtp check inconclusive", zap.String("domain", domain), zap.Error(err))
		return true, nil
	}
	if smtp == nil {
		return true, nil
	}
	if smtp.Disabled {
		return false, nil
	}
	if smtp.HostExists && !smtp.Deliverable && !smtp.CatchAll {
		return false, nil
	}
	return true, nil
}

func nullMX(records []*net.MX) bool {
	return len(records) == 1 && records[0].Host == "."
}

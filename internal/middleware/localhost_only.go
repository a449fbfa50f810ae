package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LocalhostOnly restricts a route group to loopback clients plus an optional
// allowlist of IPs or CIDR ranges. Used for the metrics endpoint.
type LocalhostOnly struct {
	logger   *logrus.Logger
	allowed  []*net.IPNet
	allowIPs []net.IP
}

// NewLocalhostOnly creates the restriction middleware. Entries in allowedIPs
// may be plain addresses or CIDR ranges; malformed entries are logged and
// skipped.
func NewLocalhostOnly(logger *logrus.Logger, allowedIPs []string) *LocalhostOnly {
	l := &LocalhostOnly{logger: logger}
	for _, entry := range allowedIPs {
		if _, network, err := net.ParseCIDR(entry); err == nil {
			l.allowed = append(l.allowed, network)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			l.allowIPs = append(l.allowIPs, ip)
			continue
		}
		logger.WithField("entry", entry).Warn("Ignoring malformed allowlist entry")
	}
	return l
}

// Restrict rejects requests from addresses outside the allowlist
func (l *LocalhostOnly) Restrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}
		ip := net.ParseIP(host)

		if ip == nil || !l.permitted(ip) {
			l.logger.WithFields(logrus.Fields{
				"remote_addr": c.Request.RemoteAddr,
				"path":        c.Request.URL.Path,
			}).Warn("Rejected non-local request to restricted endpoint")

			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access restricted",
				"code":    "ACCESS_RESTRICTED",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (l *LocalhostOnly) permitted(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	for _, allowed := range l.allowIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range l.allowed {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

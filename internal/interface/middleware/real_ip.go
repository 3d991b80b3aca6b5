package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TrustProxies restricts which peers may set the client address through
// forwarding headers. With no proxies and no platform every request is keyed
// by its socket address. platform "cloudflare" trusts CF-Connecting-IP; any
// other non-empty value is taken as the header name set by the platform.
func TrustProxies(engine *gin.Engine, proxies []string, platform string) error {
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return err
	}
	switch p := strings.TrimSpace(platform); strings.ToLower(p) {
	case "":
		engine.TrustedPlatform = ""
	case "cloudflare":
		engine.TrustedPlatform = gin.PlatformCloudflare
	default:
		engine.TrustedPlatform = p
	}
	return nil
}

// RealIP stores the client address under "real_ip". Forwarding headers count
// only as far as TrustProxies allows.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

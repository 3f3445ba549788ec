package validation

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL    = errors.New("URL cannot be empty")
	ErrPrivateHost = errors.New("local and private network hosts are not permitted")
)

// FeedURLValidator checks feed URLs typed by the user before they are
// fetched.
type FeedURLValidator struct {
	// AllowPrivateHosts permits localhost, loopback, link-local and
	// private network addresses.
	AllowPrivateHosts bool
	MaxLength         int
}

func NewFeedURLValidator(allowPrivateHosts bool) *FeedURLValidator {
	return &FeedURLValidator{
		AllowPrivateHosts: allowPrivateHosts,
		MaxLength:         2048,
	}
}

// ValidateAndNormalize trims the input, adds an https scheme when none is
// given and returns the normalized URL.
func (v *FeedURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", ErrEmptyURL
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, " \t\n<>\"`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	parsedURL.Scheme = strings.ToLower(parsedURL.Scheme)
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""

	if !v.AllowPrivateHosts && isPrivateHost(parsedURL.Hostname()) {
		return "", ErrPrivateHost
	}

	return parsedURL.String(), nil
}

func isPrivateHost(hostname string) bool {
	if isLocalhost(hostname) {
		return true
	}
	addr, err := netip.ParseAddr(hostname)
	if err != nil {
		return false
	}
	return isPrivateAddr(addr)
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	return hostname == "localhost" || strings.HasSuffix(hostname, ".localhost")
}

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified() ||
		addr == netip.AddrFrom4([4]byte{255, 255, 255, 255})
}

// IsPrivateIP reports whether ip belongs to a loopback, private or
// link-local range.
func IsPrivateIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	return isPrivateAddr(addr)
}

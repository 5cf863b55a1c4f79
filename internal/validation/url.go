// Package validation provides URL validation functions with SSRF protection.
//
// It validates URLs against private IP ranges, cloud metadata endpoints,
// and other potentially dangerous destinations that could be exploited
// in server-side request forgery attacks.
//
// ValidateBaseURL is strict and guards the open platform base URL the client
// sends app secrets to. ValidateWebhookURL is relaxed and allows localhost so
// custom bot webhooks can point at a local receiver.
//
// LARK_ALLOW_PRIVATE (any strconv.ParseBool value) or SetAllowPrivate(true)
// permits private ranges. Cloud metadata endpoints stay blocked either way.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// allowPrivate controls whether private/localhost URLs are permitted.
var allowPrivate atomic.Bool

// privateNetworks contains pre-parsed private IP ranges for efficient lookups.
// This includes RFC1918 private ranges, link-local, documentation, and other
// reserved IP blocks. Initialized once at package load time.
var privateNetworks []*net.IPNet

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("LARK_ALLOW_PRIVATE")))
	allowPrivate.Store(v)

	// Pre-parse all private CIDR ranges at init time for efficiency.
	// This avoids repeated string parsing and slice allocation on each isPrivateIP call.
	privateCIDRs := []string{
		// Private IPv4 ranges
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598 - Shared Address Space
		"169.254.0.0/16",  // RFC3927 - Link Local
		"192.0.0.0/24",    // RFC6890
		"192.0.2.0/24",    // RFC5737 - Documentation
		"198.18.0.0/15",   // RFC2544 - Benchmarking
		"198.51.100.0/24", // RFC5737 - Documentation
		"203.0.113.0/24",  // RFC5737 - Documentation
		"240.0.0.0/4",     // RFC1112 - Reserved
		// Private IPv6 ranges
		"fc00::/7",      // RFC4193 - Unique Local Addresses
		"fe80::/10",     // RFC4291 - Link Local
		"ff00::/8",      // RFC4291 - Multicast
		"::1/128",       // RFC4291 - Loopback
		"::/128",        // RFC4291 - Unspecified
		"100::/64",      // RFC6666 - Discard Prefix
		"2001::/32",     // RFC4380 - Teredo
		"2001:10::/28",  // RFC4843 - ORCHID
		"2001:db8::/32", // RFC3849 - Documentation
	}

	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// This should never happen with hardcoded valid CIDRs
			continue
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// SetAllowPrivate enables or disables private and localhost base URLs, for
// private deployments and local mock servers.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and localhost URLs are allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateBaseURL validates an open platform base URL such as
// https://open.feishu.cn. The URL must use http or https, name a host, and
// neither be nor resolve to a loopback, private or cloud metadata address.
// Loopback and private ranges pass when AllowPrivate is enabled.
func ValidateBaseURL(rawURL string) error {
	return validateURL(rawURL, false)
}

// ValidateWebhookURL validates a custom bot webhook URL. Unlike
// ValidateBaseURL it always allows loopback and unspecified addresses so a
// hook can point at a local receiver.
func ValidateWebhookURL(rawURL string) error {
	return validateURL(rawURL, true)
}

func validateURL(rawURL string, webhook bool) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}
	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}

	check := validateIPAddress
	if webhook {
		check = validateWebhookIPAddress
	} else if !allowPrivate.Load() && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return check(ip)
	}
	if webhook && isLocalhost(hostname) {
		return nil
	}
	return resolveAndCheck(hostname, check)
}

// isLocalhost checks for localhost variants
func isLocalhost(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	localhostVariants := []string{
		"localhost",
		"127.0.0.1",
		"::1",
		"0.0.0.0",
		"::",
	}

	for _, variant := range localhostVariants {
		if lowercase == variant {
			return true
		}
	}

	// Check for localhost subdomains
	if strings.HasSuffix(lowercase, ".localhost") {
		return true
	}

	return false
}

// isCloudMetadata checks for cloud metadata endpoints
func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	cloudMetadataEndpoints := []string{
		"169.254.169.254",          // AWS, Azure, GCP, DigitalOcean
		"metadata.google.internal", // GCP
		"metadata",                 // Generic
		"instance-data",            // AWS
		"fd00:ec2::254",            // AWS IPv6
	}

	for _, endpoint := range cloudMetadataEndpoints {
		if lowercase == endpoint {
			return true
		}
	}

	// Check for metadata subdomains
	if strings.HasSuffix(lowercase, ".metadata.google.internal") {
		return true
	}

	return false
}

// validateIPAddress rejects addresses a base URL must not point at.
func validateIPAddress(ip net.IP) error {
	if ip.String() == "169.254.169.254" {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if allowPrivate.Load() {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	if isPrivateIP(ip) {
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

// validateWebhookIPAddress is validateIPAddress with loopback and
// unspecified addresses allowed.
func validateWebhookIPAddress(ip net.IP) error {
	if ip.String() == "169.254.169.254" {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsLoopback() || ip.IsUnspecified() {
		return nil
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if isPrivateIP(ip) {
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

// isPrivateIP checks if an IP is in a private range.
// Uses pre-computed privateNetworks slice for efficiency.
func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// resolveAndCheck resolves hostname and applies check to every address.
// A name that does not resolve passes, so a deployment can be configured
// before its DNS exists.
func resolveAndCheck(hostname string, check func(net.IP) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", hostname)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if err := check(ip); err != nil {
			return fmt.Errorf("domain %q resolves to forbidden IP %s: %w", hostname, ip, err)
		}
	}
	return nil
}

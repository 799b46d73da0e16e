// The code in this package is derivative of https://github.com/realclientip/realclientip-go
// (all credit to Adam Pritchard). Mount of this source code is governed by a
// BSD Zero Clause License that can be found at
// https://github.com/realclientip/realclientip-go/blob/main/LICENSE.

// Package clientip implements a set of composable strategies for deriving a
// request's "real" client IP address from a [net/http.Request], the way a
// router sitting behind zero or more reverse proxies must.
package clientip

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/nilsander/triex/internal/netutil"
)

const (
	xForwardedForHdr = "X-Forwarded-For"
	forwardedHdr     = "Forwarded"
)

var (
	ErrInvalidIPAddress     = errors.New("invalid ip address")
	ErrUnspecifiedIPAddress = errors.New("unspecified ip address")
	ErrRemoteAddress        = errors.New("remote address resolver")
	ErrSingleIPHeader       = errors.New("single ip header resolver")
	ErrLeftmostNonPrivate   = errors.New("leftmost non private resolver")
	ErrRightmostNonPrivate  = errors.New("rightmost non private resolver")
)

var (
	errLeftmostNonPrivate  = fmt.Errorf("%w: unable to find a valid or non-private IP", ErrLeftmostNonPrivate)
	errRightmostNonPrivate = fmt.Errorf("%w: unable to find a valid or non-private IP", ErrRightmostNonPrivate)
	errSingleIPHeader      = fmt.Errorf("%w: header not found", ErrSingleIPHeader)
)

// HeaderKey identifies which forwarding header a multi-IP resolver reads.
type HeaderKey uint8

const (
	XForwardedForKey HeaderKey = iota
	ForwardedKey
)

func (h HeaderKey) String() string {
	return http.CanonicalHeaderKey([...]string{xForwardedForHdr, forwardedHdr}[h])
}

// Resolver derives a client IP address from a request.
type Resolver interface {
	ClientIP(r *http.Request) (*net.IPAddr, error)
}

// ResolverFunc is an adapter allowing ordinary functions to be used as a
// [Resolver].
type ResolverFunc func(r *http.Request) (*net.IPAddr, error)

// ClientIP calls f(r).
func (f ResolverFunc) ClientIP(r *http.Request) (*net.IPAddr, error) {
	return f(r)
}

// Chain attempts each resolver in order, returning the first successful
// result. A common use is a server that accepts both direct connections and
// connections behind a reverse proxy:
//
//	leftmost, _ := clientip.NewLeftmostNonPrivate(clientip.XForwardedForKey, 20)
//	var strategy = clientip.NewChain(leftmost, clientip.NewRemoteAddr())
type Chain struct {
	resolvers []Resolver
}

// NewChain creates a [Chain] that tries resolvers in order, stopping at the
// first one that succeeds.
func NewChain(resolvers ...Resolver) Chain {
	return Chain{resolvers: resolvers}
}

// ClientIP tries each configured resolver in turn.
func (s Chain) ClientIP(r *http.Request) (*net.IPAddr, error) {
	var errs error
	for _, sub := range s.resolvers {
		ipAddr, err := sub.ClientIP(r)
		if err == nil {
			return ipAddr, nil
		}
		errs = errors.Join(errs, err)
	}
	return nil, errs
}

// RemoteAddr returns the client socket IP, stripped of port. Use this
// resolver if the server accepts direct connections rather than sitting
// behind a reverse proxy.
type RemoteAddr struct{}

// NewRemoteAddr creates a [RemoteAddr] resolver.
func NewRemoteAddr() RemoteAddr {
	return RemoteAddr{}
}

// ClientIP derives the client IP from r.RemoteAddr.
func (s RemoteAddr) ClientIP(r *http.Request) (*net.IPAddr, error) {
	ipAddr, err := ParseIPAddr(r.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteAddress, err)
	}
	return ipAddr, nil
}

// SingleIPHeader derives an IP from a single-IP header such as X-Real-IP,
// CF-Connecting-IP or True-Client-IP. Use this resolver only when the header
// is set by a trusted reverse proxy and cannot be spoofed by the client.
type SingleIPHeader struct {
	headerName string
}

// NewSingleIPHeader creates a [SingleIPHeader] resolver reading headerName.
func NewSingleIPHeader(headerName string) (SingleIPHeader, error) {
	if headerName == "" {
		return SingleIPHeader{}, errors.New("empty header name")
	}
	headerName = http.CanonicalHeaderKey(headerName)
	if headerName == xForwardedForHdr || headerName == forwardedHdr {
		return SingleIPHeader{}, fmt.Errorf("header %s not allowed", headerName)
	}
	return SingleIPHeader{headerName: headerName}, nil
}

// ClientIP derives the client IP from the configured single-IP header. If
// the header occurs multiple times, the last instance is used, since RFC
// 2616 forbids repeating a non-list header and the last one is presumed
// newest.
func (s SingleIPHeader) ClientIP(r *http.Request) (*net.IPAddr, error) {
	values, ok := r.Header[s.headerName]
	if !ok || len(values) == 0 {
		return nil, errSingleIPHeader
	}
	return ParseIPAddr(values[len(values)-1])
}

// LeftmostNonPrivate derives the client IP from the leftmost valid,
// non-private address in X-Forwarded-For or Forwarded. This MUST NOT be
// used for security purposes: the value is trivially spoofable by the
// client itself.
type LeftmostNonPrivate struct {
	headerName        string
	blacklistedRanges []net.IPNet
	limit             uint
}

// NewLeftmostNonPrivate creates a [LeftmostNonPrivate] resolver. limit caps
// the number of header entries inspected, guarding against adversarial
// headers with an unbounded number of list items. By default loopback,
// link-local and private ranges are blacklisted.
func NewLeftmostNonPrivate(key HeaderKey, limit uint, blacklist ...net.IPNet) (LeftmostNonPrivate, error) {
	if key > ForwardedKey {
		return LeftmostNonPrivate{}, errors.New("invalid header key")
	}
	if limit == 0 {
		return LeftmostNonPrivate{}, errors.New("invalid limit: expect greater than zero")
	}
	return LeftmostNonPrivate{
		headerName:        key.String(),
		blacklistedRanges: orSlice(blacklist, privateAndLocalRanges),
		limit:             limit,
	}, nil
}

// ClientIP derives the client IP using the configured leftmost-scan rule.
func (s LeftmostNonPrivate) ClientIP(r *http.Request) (*net.IPAddr, error) {
	values, ok := r.Header[s.headerName]
	if !ok || len(values) == 0 {
		return nil, errLeftmostNonPrivate
	}

	var scanned uint
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if scanned >= s.limit {
				return nil, errLeftmostNonPrivate
			}
			scanned++
			ip := parseListItem(strings.TrimSpace(item), s.headerName)
			if ip != nil && !isIPContainedInRanges(ip.IP, s.blacklistedRanges) {
				return ip, nil
			}
		}
	}
	return nil, errLeftmostNonPrivate
}

// RightmostNonPrivate derives the client IP from the rightmost valid,
// non-private address in X-Forwarded-For or Forwarded. Use this resolver
// when every reverse proxy between the internet and the server has a
// private-space address.
type RightmostNonPrivate struct {
	headerName    string
	trustedRanges []net.IPNet
}

// NewRightmostNonPrivate creates a [RightmostNonPrivate] resolver. By
// default loopback, link-local and private ranges are trusted.
func NewRightmostNonPrivate(key HeaderKey, trusted ...net.IPNet) (RightmostNonPrivate, error) {
	if key > ForwardedKey {
		return RightmostNonPrivate{}, errors.New("invalid header key")
	}
	return RightmostNonPrivate{
		headerName:    key.String(),
		trustedRanges: orSlice(trusted, privateAndLocalRanges),
	}, nil
}

// ClientIP derives the client IP using the configured rightmost-scan rule.
func (s RightmostNonPrivate) ClientIP(r *http.Request) (*net.IPAddr, error) {
	values, ok := r.Header[s.headerName]
	if !ok || len(values) == 0 {
		return nil, errRightmostNonPrivate
	}

	for i := len(values) - 1; i >= 0; i-- {
		items := strings.Split(values[i], ",")
		for j := len(items) - 1; j >= 0; j-- {
			ip := parseListItem(strings.TrimSpace(items[j]), s.headerName)
			if ip != nil && !isIPContainedInRanges(ip.IP, s.trustedRanges) {
				return ip, nil
			}
		}
	}
	return nil, errRightmostNonPrivate
}

// parseListItem parses one X-Forwarded-For or Forwarded header list item.
func parseListItem(item, headerName string) *net.IPAddr {
	if headerName == forwardedHdr {
		return parseForwardedListItem(item)
	}
	ip, _ := ParseIPAddr(item)
	return ip
}

// parseForwardedListItem extracts the "for=" identifier from a single
// Forwarded header list item, returning nil if absent or invalid.
func parseForwardedListItem(fwd string) *net.IPAddr {
	var forPart string
	for _, fp := range strings.SplitN(fwd, ";", 4) {
		fp = strings.TrimSpace(fp)
		kv := strings.SplitN(fp, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "for") {
			forPart = kv[1]
			break
		}
	}

	forPart = strings.TrimSpace(forPart)
	forPart = trimMatchedEnds(forPart, `"`)
	if forPart == "" {
		return nil
	}

	ipAddr, _ := ParseIPAddr(forPart)
	return ipAddr
}

// ParseIPAddr safely parses s into a [net.IPAddr], rejecting unspecified
// addresses like "::" or "0.0.0.0", which are nominally valid IPs but are
// never valid real client IPs.
func ParseIPAddr(s string) (*net.IPAddr, error) {
	host, _, err := net.SplitHostPort(s)
	if err == nil {
		s = host
	}
	// We continue even on error: net.SplitHostPort may complain about "too
	// many colons" on a bracket-less IPv6 address with no port; ParseIP is
	// the final arbiter of validity.

	s = trimMatchedEnds(s, "[]")

	ipStr, zone := netutil.SplitHostZone(s)
	ipAddr := &net.IPAddr{IP: net.ParseIP(ipStr), Zone: zone}
	if ipAddr.IP == nil {
		return nil, ErrInvalidIPAddress
	}
	if ipAddr.IP.IsUnspecified() {
		return nil, ErrUnspecifiedIPAddress
	}
	return ipAddr, nil
}

// trimMatchedEnds trims s only if its first and last bytes match chars
// (length 1 or 2, giving distinct open/close bytes).
func trimMatchedEnds(s, chars string) string {
	first, last := chars[0], chars[0]
	if len(chars) > 1 {
		last = chars[1]
	}
	if len(s) < 2 || s[0] != first || s[len(s)-1] != last {
		return s
	}
	return s[1 : len(s)-1]
}

func isIPContainedInRanges(ip net.IP, ranges []net.IPNet) bool {
	for _, r := range ranges {
		if r.Contains(ip) {
			return true
		}
	}
	return false
}

// orSlice returns the first of its arguments with non-zero length.
func orSlice[T any, S ~[]T](vals ...S) S {
	var zero S
	for _, val := range vals {
		if len(val) > 0 {
			return val
		}
	}
	return zero
}

func mustParseCIDR(s string) net.IPNet {
	_, ipNet, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return *ipNet
}

// privateAndLocalRanges are loopback, private, link-local and other
// non-routable ranges, default-trusted/blacklisted by the resolvers above.
// Based on https://github.com/wader/filtertransport, itself based on
// https://github.com/letsencrypt/boulder/blob/master/bdns/dns.go.
var privateAndLocalRanges = []net.IPNet{
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("0.0.0.0/8"),
	mustParseCIDR("169.254.0.0/16"),
	mustParseCIDR("192.0.0.0/24"),
	mustParseCIDR("192.0.2.0/24"),
	mustParseCIDR("198.51.100.0/24"),
	mustParseCIDR("203.0.113.0/24"),
	mustParseCIDR("192.88.99.0/24"),
	mustParseCIDR("198.18.0.0/15"),
	mustParseCIDR("224.0.0.0/4"),
	mustParseCIDR("240.0.0.0/4"),
	mustParseCIDR("255.255.255.255/32"),
	mustParseCIDR("100.64.0.0/10"),
	mustParseCIDR("::/128"),
	mustParseCIDR("::1/128"),
	mustParseCIDR("100::/64"),
	mustParseCIDR("2001::/23"),
	mustParseCIDR("2001:2::/48"),
	mustParseCIDR("2001:db8::/32"),
	mustParseCIDR("2001::/32"),
	mustParseCIDR("fc00::/7"),
	mustParseCIDR("fe80::/10"),
	mustParseCIDR("ff00::/8"),
	mustParseCIDR("2002::/16"),
}

// Portions of this code were derived from the Echo project
// (https://github.com/labstack/echo) under the MIT License.

package triex

// Headers used by the built-in middleware and redirect handling.
const (
	HeaderAllow           = "Allow"
	HeaderContentType     = "Content-Type"
	HeaderLocation        = "Location"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderXRealIP         = "X-Real-Ip"
	HeaderForwarded       = "Forwarded"
	HeaderCFConnectingIP  = "CF-Connecting-IP"
	HeaderTrueClientIP    = "True-Client-IP"
	HeaderAuthorization   = "Authorization"
	HeaderCookie          = "Cookie"
	HeaderSetCookie       = "Set-Cookie"
)

// MIMETextPlainCharsetUTF8 is the content type written by the default error
// handlers.
const MIMETextPlainCharsetUTF8 = "text/plain; charset=utf-8"

// blacklistedHeader lists request headers redacted from panic dumps.
var blacklistedHeader = []string{HeaderAuthorization, HeaderCookie, HeaderSetCookie}

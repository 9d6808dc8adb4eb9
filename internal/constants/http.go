package constants

const (
	APIFieldRequestID = "request_id"
)

const (
	ContentTypeJSON        = "application/json"
	ContentTypeProblemJSON = "application/problem+json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeHTML        = "text/html; charset=utf-8"
	ContentTypeTextUTF8    = "text/plain; charset=utf-8"
)

const (
	HeaderAccept         = "Accept"
	HeaderAuthorization  = "Authorization"
	HeaderContentDigest  = "Content-Digest"
	HeaderContentLength  = "Content-Length"
	HeaderContentType    = "Content-Type"
	HeaderOrigin         = "Origin"
	HeaderUserAgent      = "User-Agent"
	HeaderXAPIKey        = "X-API-Key" // #nosec G101
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRequestedWith = "X-Requested-With"

	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
)

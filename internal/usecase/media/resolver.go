package media

import (
	"net/url"
	"strings"
)

// URLResolver turns stored image references into displayable URLs.
type URLResolver struct {
	baseURL      string
	publicPrefix string
	placeholder  string
}

func NewURLResolver(baseURL, publicPrefix, placeholder string) *URLResolver {
	return &URLResolver{
		baseURL:      strings.TrimRight(baseURL, "/"),
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		placeholder:  placeholder,
	}
}

// ResolveURL maps a reference to a URL:
//
//	""                 -> placeholder
//	"https://cdn/x.png" -> unchanged
//	"/uploads/x.webp"  -> base + "/uploads/x.webp"
//	"x.webp"           -> base + prefix + "/x.webp"
func (r *URLResolver) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return r.placeholder
	}
	if isAbsoluteURL(ref) {
		return ref
	}
	if strings.HasPrefix(ref, "/") {
		return r.baseURL + ref
	}
	return r.baseURL + r.PublicPath(ref)
}

// ResolveNullable is ResolveURL for nullable columns.
func (r *URLResolver) ResolveNullable(ref *string) string {
	if ref == nil {
		return r.placeholder
	}
	return r.ResolveURL(*ref)
}

// PublicPath is the server-relative path an artifact is served from.
func (r *URLResolver) PublicPath(filename string) string {
	return r.publicPrefix + "/" + filename
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

package store

import "strings"

// ResolveAssetURL turns a stored image or video reference into a URL under
// base. References that already carry a scheme are returned as is. The
// reference is never inspected beyond that.
func ResolveAssetURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if i := strings.Index(ref, "://"); i > 0 {
		return ref
	}
	if base == "" {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

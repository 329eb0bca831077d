package mediastore

import (
	"net/url"
	"strings"
)

// Builder derives public object-storage URLs for hotel media. It performs no I/O.
type Builder struct {
	base   string
	bucket string
}

func New(baseURL, bucket string) *Builder {
	return &Builder{base: strings.TrimRight(strings.TrimSpace(baseURL), "/"), bucket: strings.Trim(bucket, "/")}
}

// ObjectURL returns <base>/storage/v1/object/public/<bucket>/<slug>/<file>.
// A file that already carries a path below the slug is kept as-is, segment by segment.
func (b *Builder) ObjectURL(slug, file string) string {
	parts := []string{"storage", "v1", "object", "public", b.bucket, strings.Trim(slug, "/")}
	for _, seg := range strings.Split(strings.Trim(file, "/"), "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			escaped = append(escaped, url.PathEscape(p))
		}
	}
	return b.base + "/" + strings.Join(escaped, "/")
}

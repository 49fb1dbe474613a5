package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLResolver_ResolveURL(t *testing.T) {
	r := NewURLResolver("http://localhost:3001/", "/uploads/", "/placeholder.png")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"empty gives placeholder", "", "/placeholder.png"},
		{"blank gives placeholder", "   ", "/placeholder.png"},
		{"absolute http unchanged", "http://x/y.jpg", "http://x/y.jpg"},
		{"absolute https unchanged", "https://cdn.example.com/a/b.webp", "https://cdn.example.com/a/b.webp"},
		{"data url unchanged", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"rooted path gets base", "/foo.jpg", "http://localhost:3001/foo.jpg"},
		{"rooted uploads path", "/uploads/a.webp", "http://localhost:3001/uploads/a.webp"},
		{"bare filename gets prefix", "a.webp", "http://localhost:3001/uploads/a.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveURL(tt.ref))
		})
	}
}

func TestURLResolver_ResolveNullable(t *testing.T) {
	r := NewURLResolver("", "uploads", "/placeholder.png")

	assert.Equal(t, "/placeholder.png", r.ResolveNullable(nil))

	name := "a.png"
	assert.Equal(t, "/uploads/a.png", r.ResolveNullable(&name))
}

func TestURLResolver_PublicPath(t *testing.T) {
	r := NewURLResolver("", "/uploads", "")
	assert.Equal(t, "/uploads/x.webp", r.PublicPath("x.webp"))
}

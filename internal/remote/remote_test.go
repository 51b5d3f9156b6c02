package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://localhost:8080/images/public/u1/1.png", "public/u1/1.png"},
		{"https://cdn.example.com/images/public/u1/a.webp", "public/u1/a.webp"},
		{"http://localhost:8080/other/place.png", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectPath(tt.url), "url %q", tt.url)
	}
}

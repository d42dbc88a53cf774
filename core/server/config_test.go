package server_test

import (
	"testing"

	"arxml-merger/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_UploadLimitBytes(t *testing.T) {
	tests := []struct {
		name string
		mb   int
		want int
	}{
		{"Configured", 8, 8 * 1024 * 1024},
		{"Zero falls back to default", 0, 64 * 1024 * 1024},
		{"Negative falls back to default", -3, 64 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{MaxUploadMB: tt.mb}
			assert.Equal(t, tt.want, c.UploadLimitBytes())
		})
	}
}

package chat

import (
	"strings"
	"testing"
)

func TestRedisAddr(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "host and port", addr: "localhost:6379", want: "localhost:6379"},
		{name: "default port", addr: "cache.internal", want: "cache.internal:6379"},
		{name: "credentials", addr: "accountant:s3cret@cache.internal:6380/2", want: "cache.internal:6380"},
		{name: "password only", addr: ":s3cret@cache.internal:6379", want: "cache.internal:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedisAddr(tt.addr)
			if got != tt.want {
				t.Errorf("RedisAddr(%q) = %q, want %q", tt.addr, got, tt.want)
			}
			if strings.Contains(got, "s3cret") {
				t.Errorf("RedisAddr(%q) leaks the password: %q", tt.addr, got)
			}
		})
	}
}

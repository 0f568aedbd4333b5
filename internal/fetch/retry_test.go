package fetch

import (
	"errors"
	"fmt"
	"net"
	"testing"
)

// timeoutErr implements net.Error without being an OpError or DNSError.
type timeoutErr struct {
	timeout bool
}

func (e timeoutErr) Error() string   { return "net error" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return false }

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
		{200, false},
		{301, false},
		{403, false},
		{404, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			if got := IsRetryableStatus(tt.code); got != tt.want {
				t.Errorf("IsRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable status", &StatusError{503}, true},
		{"wrapped retryable status", fmt.Errorf("download: %w", &StatusError{429}), true},
		{"forbidden status", &StatusError{403}, false},
		{"plain error", errors.New("boom"), false},
		{"dial failure", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"wrapped dial failure", fmt.Errorf("tls request: %w", &net.OpError{Op: "dial", Err: errors.New("refused")}), true},
		{"dns error", &net.DNSError{Name: "ssrweb.zoom.us"}, true},
		{"wrapped dns error", fmt.Errorf("tls request: %w", &net.DNSError{Name: "ssrweb.zoom.us"}), true},
		{"timeout", &net.DNSError{IsTimeout: true}, true},
		{"non-timeout net.Error", timeoutErr{timeout: false}, false},
		{"timeout net.Error", timeoutErr{timeout: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	if (&StatusError{503}).Error() != "Service Unavailable" {
		t.Errorf("unexpected message: %q", (&StatusError{503}).Error())
	}
	if (&StatusError{799}).Error() != "unknown status" {
		t.Errorf("unexpected message: %q", (&StatusError{799}).Error())
	}
}

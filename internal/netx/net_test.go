package netx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUploadToS3PresignedURL(t *testing.T) {
	file := []byte("fake image bytes")

	t.Run("success 200 OK", func(t *testing.T) {
		var gotBody []byte
		var gotCT string
		var gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			_ = r.Body.Close()
			gotBody = body
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := UploadToS3PresignedURL(ts.URL+"/some/presigned?X-Amz-Signature=abc", file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodPut {
			t.Fatalf("method = %q, want PUT", gotMethod)
		}
		if gotCT != "application/octet-stream" {
			t.Fatalf("Content-Type = %q, want application/octet-stream", gotCT)
		}
		if !bytes.Equal(gotBody, file) {
			t.Fatalf("body = %q, want %q", string(gotBody), string(file))
		}
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		err := UploadToS3PresignedURL(ts.URL, file)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "upload failed: 403") {
			t.Fatalf("error = %q, want to contain 403", err.Error())
		}
	})
}

type fakePinger struct {
	err   error
	delay time.Duration
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestProber_Online(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		p := NewProber(&fakePinger{}, time.Second)
		if !p.Online(context.Background()) {
			t.Fatal("expected online")
		}
	})

	t.Run("ping error -> offline", func(t *testing.T) {
		p := NewProber(&fakePinger{err: errors.New("conn refused")}, time.Second)
		if p.Online(context.Background()) {
			t.Fatal("expected offline")
		}
	})

	t.Run("slow ping times out -> offline", func(t *testing.T) {
		p := NewProber(&fakePinger{delay: time.Second}, 20*time.Millisecond)
		if p.Online(context.Background()) {
			t.Fatal("expected offline on timeout")
		}
	})
}

// Package netx holds small network helpers: uploading to S3 presigned URLs
// and probing backend reachability for the sync scheduler's connectivity
// constraint.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UploadToS3PresignedURL PUTs file to a presigned S3 URL.
func UploadToS3PresignedURL(url string, file []byte) error {
	req, err := http.NewRequest("PUT", url, bytes.NewReader(file))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

// Pinger is the probe the Prober uses, usually the API client's Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober answers "is the backend reachable right now" for scheduler
// constraints. Each call performs one probe with a short timeout.
type Prober struct {
	pinger  Pinger
	timeout time.Duration
}

func NewProber(p Pinger, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{pinger: p, timeout: timeout}
}

// Online reports whether the backend answered a ping within the probe timeout.
func (p *Prober) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.pinger.Ping(ctx) == nil
}

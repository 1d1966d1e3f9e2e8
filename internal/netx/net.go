// Package netx fetches objects from presigned storage URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// DownloadToFile GETs url and writes the body to path. A partial file is
// removed when the transfer fails.
func DownloadToFile(ctx context.Context, client *http.Client, url, path string) (n int64, err error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return io.Copy(f, resp.Body)
}

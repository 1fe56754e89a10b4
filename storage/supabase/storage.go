package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// UploadFile stores a file in the named bucket and returns its public URL.
// x-upsert lets a re-upload of the same object key overwrite in place.
func (c *Client) UploadFile(ctx context.Context, bucket, object string, content []byte, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(content))
	if err != nil {
		return "", pkgerrors.Wrap(err, "building upload request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	res, err := c.http.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(err, "calling object store")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		sErr := &Error{StatusCode: res.StatusCode}
		if payload, err := io.ReadAll(res.Body); err == nil {
			var detail struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(payload, &detail); err == nil {
				sErr.Message = detail.Message
			}
		}
		return "", sErr
	}

	// the bucket is public, so the canonical public path is the file's URL
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, object), nil
}

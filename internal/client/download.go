package client

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
)

const defaultFilename = "download"

// FileResponse is a downloaded file such as an invoice PDF.
type FileResponse struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int
}

// SaveToFile writes the file to path, creating parent directories.
func (f *FileResponse) SaveToFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, f.Data, 0644)
}

// SaveToDirectory writes the file under dir using its own filename and
// returns the full path.
func (f *FileResponse) SaveToDirectory(dir string) (string, error) {
	path := filepath.Join(dir, f.Filename)
	if err := f.SaveToFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// Download fetches a binary resource. Retries and error mapping match Request;
// a JSON error envelope with a non-"00" code is returned as an *APIError.
func (c *Client) Download(ctx context.Context, opts RequestOptions) (*FileResponse, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	resp, err := c.execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	if resp.status >= 400 {
		return nil, errors.APIErrorFromBody(resp.status, resp.body)
	}

	contentType := resp.header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		if env, err := signature.Parse(resp.body); err == nil && env.Kind() == signature.KindMapping {
			if code, ok := env.Get("code"); ok && !code.IsNull() && stringField(env, "code") != "00" {
				return nil, errors.NewAPIError(resp.status, stringField(env, "code"), stringField(env, "desc"), resp.body)
			}
		}
	}

	return &FileResponse{
		Data:        resp.body,
		Filename:    filenameFrom(resp.header.Get("Content-Disposition")),
		ContentType: contentType,
		Size:        len(resp.body),
	}, nil
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return defaultFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return defaultFilename
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == string(filepath.Separator) {
		return defaultFilename
	}
	return name
}

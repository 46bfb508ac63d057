// Package api - Stream-basierte Client-Methoden.
// Dieses Modul enthaelt alle Methoden, die NDJSON-Responses verwenden.

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chishi/forge/format"
)

// Die letzte Zeile eines Upscale-Streams traegt das ganze Bild als base64
const maxBufferSize = 2 * format.GibiByte

func (c *Client) stream(ctx context.Context, method, path string, query url.Values, data any, fn func([]byte) error) error {
	reqBody, contentType, err := body(data)
	if err != nil {
		return err
	}

	requestURL := c.base.JoinPath(path)
	if len(query) > 0 {
		requestURL.RawQuery = query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), reqBody)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/x-ndjson")
	request.Header.Set("User-Agent", userAgent())

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	scanner := bufio.NewScanner(response.Body)
	// increase the buffer size to avoid running out of space
	scanBuf := make([]byte, 0, 64*format.KibiByte)
	scanner.Buffer(scanBuf, maxBufferSize)
	for scanner.Scan() {
		var errorResponse ErrorResponse

		bts := scanner.Bytes()
		if err := json.Unmarshal(bts, &errorResponse); err != nil {
			if response.StatusCode >= http.StatusBadRequest {
				return StatusError{
					StatusCode:   response.StatusCode,
					Status:       response.Status,
					ErrorMessage: string(bts),
				}
			}
			return errors.New(string(bts))
		}

		if response.StatusCode >= http.StatusBadRequest {
			return StatusError{
				StatusCode:   response.StatusCode,
				Status:       response.Status,
				ErrorMessage: errorResponse.Error,
				Code:         errorResponse.Code,
			}
		}

		if errorResponse.Error != "" {
			// Fehler nach Stream-Beginn: Status ist bereits 200
			return StatusError{
				StatusCode:   http.StatusInternalServerError,
				ErrorMessage: errorResponse.Error,
				Code:         errorResponse.Code,
			}
		}

		if err := fn(bts); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// ProgressFunc is a function that [Client.Upscale] and [Client.Corrupt]
// invoke for every line of the stream. If this function returns an error,
// the request is aborted and the error is returned.
type ProgressFunc func(ProgressResponse) error

func decodeProgress(fn ProgressFunc) func([]byte) error {
	return func(bts []byte) error {
		var resp ProgressResponse
		if err := json.Unmarshal(bts, &resp); err != nil {
			return err
		}

		return fn(resp)
	}
}

// Upscale sends an image to the server and streams progress. The last
// response has status "done" and carries the encoded result, or
// "cancelled" when the server aborted the run.
func (c *Client) Upscale(ctx context.Context, req *UpscaleRequest, fn ProgressFunc) error {
	return c.stream(ctx, http.MethodPost, "/api/upscale", nil, req, decodeProgress(fn))
}

// Corrupt uploads a container read from r and streams progress. The last
// response has status "done" and carries the corrupted bytes.
func (c *Client) Corrupt(ctx context.Context, r io.Reader, req *CorruptRequest, fn ProgressFunc) error {
	query := url.Values{}
	query.Set("percent", strconv.FormatFloat(req.Percent, 'g', -1, 64))
	return c.stream(ctx, http.MethodPost, "/api/corrupt", query, r, decodeProgress(fn))
}

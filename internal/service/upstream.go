package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

const maxUpstreamBody = 4 << 20

// decodeResponse closes resp. Non-2xx statuses become ApiError with the upstream detail;
// a 2xx body that out cannot hold becomes MalformedResponse.
func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return appErrors.Network(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body models.ErrorBody
		_ = json.Unmarshal(raw, &body)
		return appErrors.APIError(resp.StatusCode, body.Message())
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if resp.StatusCode == http.StatusNoContent {
			return nil
		}
		return appErrors.Malformed(nil, "empty response body from the tracker API")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Malformed(err, "")
	}
	return nil
}

func jsonOptions(method string, in interface{}) (RequestOptions, error) {
	opts := RequestOptions{Method: method}
	if in == nil {
		return opts, nil
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return opts, fmt.Errorf("marshal request body: %w", err)
	}
	opts.Body = payload
	opts.Header = http.Header{"Content-Type": []string{"application/json"}}
	return opts, nil
}

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// doGet performs a GET against a price source and records the round trip.
// The returned Attempt is populated even when err is non-nil.
func doGet(ctx context.Context, hc *http.Client, sourceName, fullURL string, extra http.Header) (body []byte, att Attempt, err error) {
	att = Attempt{Source: sourceName, URL: fullURL}
	start := time.Now()
	defer func() {
		att.DurationMS = time.Since(start).Milliseconds()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		err = fmt.Errorf("create request: %w", err)
		att.Error = err.Error()
		return nil, att, err
	}

	req.Header.Set("Accept", "application/json")
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		err = fmt.Errorf("do request: %w", err)
		att.Error = err.Error()
		return nil, att, err
	}
	defer resp.Body.Close()

	att.Status = resp.StatusCode

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("read response: %w", err)
		att.Error = err.Error()
		return nil, att, err
	}
	att.Body = truncate(body)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    statusText(resp.StatusCode),
			Body:       body,
		}
		att.Error = apiErr.Error()
		return nil, att, apiErr
	}

	return body, att, nil
}

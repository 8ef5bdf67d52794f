package wiki

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/olgasafonova/mediawiki-client/internal/infra"
	"github.com/olgasafonova/mediawiki-client/metrics"
)

type actionKey struct{}

// withAction tags ctx with the API action for the transport's log hooks
func withAction(ctx context.Context, action string) context.Context {
	return context.WithValue(ctx, actionKey{}, action)
}

func actionFrom(ctx context.Context) string {
	action, _ := ctx.Value(actionKey{}).(string)
	return action
}

// newRetryClient wraps httpClient in a retrying client driven by policy.
// Transport failures and non-2xx statuses are retried; when the policy gives
// up, the last response or error is passed through untouched so the caller
// can classify it.
func newRetryClient(httpClient *http.Client, policy infra.RetryPolicy, logger *slog.Logger) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.Logger = logger
	rc.RetryMax = policy.RetryMax()
	rc.RetryWaitMin = policy.Delay
	rc.RetryWaitMax = policy.MaxDelay
	rc.Backoff = policy.Backoff
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}
		action := actionFrom(req.Context())
		metrics.RecordRetry(action)
		logger.Warn("Retrying API request",
			"attempt", attempt+1,
			"method", req.Method,
			"action", action)
	}
	rc.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		if isSuccess(resp.StatusCode) {
			return
		}
		logger.Warn("API returned non-OK status",
			"status", resp.Status,
			"action", actionFrom(resp.Request.Context()))
	}
	return rc
}

// checkRetry retries every transport failure the default policy considers
// recoverable and every non-2xx status, until ctx is done.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return !isSuccess(resp.StatusCode), nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// newHTTPClient creates an HTTP client with tuned transport settings.
// No cookie jar: the session owns cookies and sets the Cookie header itself.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

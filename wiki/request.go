package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/buger/jsonparser"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/olgasafonova/mediawiki-client/metrics"
	"github.com/olgasafonova/mediawiki-client/tracing"
)

// Request accumulates arguments for a single API call.
// A Request is reusable: each Get/Post sends the arguments as they are at call time.
type Request struct {
	session *Session
	args    url.Values
}

// Request starts a call seeded with format=json and formatversion=2
func (s *Session) Request() *Request {
	args := url.Values{}
	args.Set("format", "json")
	args.Set("formatversion", "2")
	return &Request{session: s, args: args}
}

// Arg sets an argument. A later call with the same key replaces the value.
func (r *Request) Arg(key, value string) *Request {
	r.args.Set(key, value)
	return r
}

// OptionalArg sets an argument when value is non-nil
func (r *Request) OptionalArg(key string, value *string) *Request {
	if value != nil {
		r.args.Set(key, *value)
	}
	return r
}

// Args returns a copy of the current arguments
func (r *Request) Args() map[string]string {
	out := make(map[string]string, len(r.args))
	for k := range r.args {
		out[k] = r.args.Get(k)
	}
	return out
}

// Get sends the arguments as a query string
func (r *Request) Get(ctx context.Context) (*Response, error) {
	return r.do(ctx, http.MethodGet, nil, "")
}

// Post sends the arguments as a urlencoded form
func (r *Request) Post(ctx context.Context) (*Response, error) {
	return r.do(ctx, http.MethodPost, []byte(r.args.Encode()), "application/x-www-form-urlencoded")
}

// PostMultipart sends the arguments as leading text fields followed by parts
func (r *Request) PostMultipart(ctx context.Context, parts ...Part) (*Response, error) {
	body, contentType, err := encodeMultipart(r.args, parts)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: r.op(http.MethodPost), Err: fmt.Errorf("encode multipart body: %w", err)}
	}
	return r.do(ctx, http.MethodPost, body, contentType)
}

func (r *Request) action() string {
	if a := r.args.Get("action"); a != "" {
		return a
	}
	return "unknown"
}

func (r *Request) op(method string) string {
	return method + " " + r.action()
}

// do runs one logical exchange: send with retries, merge cookies, classify.
func (r *Request) do(ctx context.Context, method string, body []byte, contentType string) (*Response, error) {
	s := r.session
	action := r.action()
	op := r.op(method)

	ctx, span := tracing.StartSpan(ctx, "wiki.request")
	defer span.End()
	tracing.AddRequestAttributes(span, method, action)

	start := time.Now()
	resp, err := r.exchange(withAction(ctx, action), method, body, contentType, op)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = outcomeOf(err)
		tracing.RecordError(span, err)
		if e, ok := AsError(err); ok && e.Kind == KindAPI {
			metrics.RecordAPIError(action, e.Code)
		}
		s.logger.Debug("API call failed", "op", op, "error", err)
	}
	metrics.RecordAPICall(action, method, outcome, time.Since(start).Seconds())

	return resp, err
}

func (r *Request) exchange(ctx context.Context, method string, body []byte, contentType, op string) (*Response, error) {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.config.BaseURL
	if method == http.MethodGet {
		target += "?" + r.args.Encode()
	}

	var reqBody any
	if body != nil {
		reqBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	if cookie := s.cookies.header(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	httpResp, err := s.client.Do(req)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	raw, err := readAndClose(httpResp)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if err := s.cookies.merge(httpResp.Header.Values("Set-Cookie")); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Op = op
		}
		return nil, err
	}
	metrics.SetCookieStoreSize(s.cookies.size())

	if !isSuccess(httpResp.StatusCode) {
		return nil, &Error{
			Kind:       KindStatus,
			Op:         op,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       raw,
		}
	}

	return decodeEnvelope(raw, op)
}

// decodeEnvelope validates the JSON body and turns a top-level error object
// into a KindAPI error.
func decodeEnvelope(raw []byte, op string) (*Response, error) {
	if !json.Valid(raw) {
		return nil, &Error{Kind: KindParse, Op: op, Err: errors.New("invalid JSON"), Body: raw}
	}
	if trimmed := bytes.TrimSpace(raw); trimmed[0] != '{' {
		return nil, &Error{Kind: KindParse, Op: op, Err: errors.New("response is not a JSON object"), Body: raw}
	}

	if errObj, dt, _, err := jsonparser.Get(raw, "error"); err == nil {
		apiErr := &Error{Kind: KindAPI, Op: op, Body: raw}
		if dt == jsonparser.Object {
			apiErr.Code, _ = jsonparser.GetString(errObj, "code")
			apiErr.Info, _ = jsonparser.GetString(errObj, "info")
		}
		return nil, apiErr
	}

	return newResponse(raw, op), nil
}

func outcomeOf(err error) string {
	e, ok := AsError(err)
	if !ok {
		return metrics.OutcomeTransport
	}
	switch e.Kind {
	case KindStatus:
		return metrics.OutcomeStatus
	case KindParse:
		return metrics.OutcomeParse
	case KindCookie:
		return metrics.OutcomeCookie
	case KindAPI:
		return metrics.OutcomeAPI
	default:
		return metrics.OutcomeTransport
	}
}

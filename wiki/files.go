package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// RecentChangesProps is the rcprop value requested by QueryRecentChanges
const RecentChangesProps = "user|userid|comment|timestamp|title|ids|sha1|sizes|redirect|loginfo|tags|flags"

// QueryRecentChanges lists recent changes, newest first, limit per page
func (s *Session) QueryRecentChanges(limit int) *Query {
	return s.Query("recentchanges").
		Arg("rcdir", "older").
		Arg("rcprop", RecentChangesProps).
		Arg("rclimit", fmt.Sprintf("%d", limit))
}

type imageInfoPage struct {
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	ImageInfo []struct {
		URL string `json:"url"`
	} `json:"imageinfo"`
}

// FileURL resolves the download URL of File:<name>.
// It returns false when the wiki has no such file.
func (s *Session) FileURL(ctx context.Context, name string) (string, bool, error) {
	resp, err := s.Request().
		Arg("action", "query").
		Arg("prop", "imageinfo").
		Arg("titles", "File:"+name).
		Arg("iiprop", "url").
		Get(ctx)
	if err != nil {
		return "", false, err
	}

	var pages []imageInfoPage
	if err := resp.Decode(&pages, "query", "pages"); err != nil {
		return "", false, err
	}
	if len(pages) == 0 {
		return "", false, resp.parseError([]string{"query", "pages", "[0]"}, "no page returned")
	}
	page := pages[0]
	if page.Missing {
		return "", false, nil
	}
	if len(page.ImageInfo) == 0 || page.ImageInfo[0].URL == "" {
		return "", false, resp.parseError([]string{"query", "pages", "[0]", "imageinfo"}, "missing url")
	}
	return page.ImageInfo[0].URL, true, nil
}

// DownloadFile fetches the contents of File:<name>. A file the wiki does not
// have yields (nil, false, nil). The download shares the session's retry policy.
func (s *Session) DownloadFile(ctx context.Context, name string) ([]byte, bool, error) {
	fileURL, ok, err := s.FileURL(ctx, name)
	if err != nil || !ok {
		return nil, ok, err
	}

	op := "GET file"
	req, err := retryablehttp.NewRequestWithContext(withAction(ctx, "download"), http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, false, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, false, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	data, err := readAndClose(resp)
	if err != nil {
		return nil, false, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	if !isSuccess(resp.StatusCode) {
		return nil, false, &Error{Kind: KindStatus, Op: op, StatusCode: resp.StatusCode, Status: resp.Status, Body: data}
	}

	s.logger.Debug("Downloaded file", "name", name, "bytes", len(data))
	return data, true, nil
}

// UploadFile uploads r as File:<name>
func (s *Session) UploadFile(ctx context.Context, token Token[Csrf], name string, r io.Reader) (*Response, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", name, err)
	}

	return s.Request().
		Arg("action", "upload").
		Arg("filename", name).
		Arg("token", token.Value()).
		PostMultipart(ctx, FilePart("file", name, data))
}

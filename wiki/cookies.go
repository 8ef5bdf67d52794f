package wiki

import (
	"fmt"
	"net/http"
	"strings"
)

// cookieStore holds the session cookies keyed by name.
// A Set-Cookie for a known name overwrites the stored cookie; nothing is ever
// pruned otherwise. The Cookie header lists cookies in first-seen order.
type cookieStore struct {
	cookies map[string]*http.Cookie
	order   []string
}

func newCookieStore() *cookieStore {
	return &cookieStore{cookies: make(map[string]*http.Cookie)}
}

// merge applies Set-Cookie header values. All lines are parsed before any is
// applied, so a malformed line leaves the store untouched.
func (s *cookieStore) merge(lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	parsed := make([]*http.Cookie, 0, len(lines))
	for _, line := range lines {
		cookie, err := http.ParseSetCookie(line)
		if err != nil {
			return &Error{
				Kind: KindCookie,
				Err:  fmt.Errorf("parse Set-Cookie: %w", err),
				Body: []byte(line),
			}
		}
		parsed = append(parsed, cookie)
	}

	for _, cookie := range parsed {
		if _, ok := s.cookies[cookie.Name]; !ok {
			s.order = append(s.order, cookie.Name)
		}
		s.cookies[cookie.Name] = cookie
	}
	return nil
}

// header renders the Cookie request header, or "" when the store is empty
func (s *cookieStore) header() string {
	pairs := make([]string, 0, len(s.order))
	for _, name := range s.order {
		pairs = append(pairs, name+"="+s.cookies[name].Value)
	}
	return strings.Join(pairs, "; ")
}

func (s *cookieStore) snapshot() map[string]string {
	out := make(map[string]string, len(s.cookies))
	for name, cookie := range s.cookies {
		out[name] = cookie.Value
	}
	return out
}

func (s *cookieStore) size() int {
	return len(s.cookies)
}

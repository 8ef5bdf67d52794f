package wiki

import (
	"context"
	"fmt"

	"github.com/olgasafonova/mediawiki-client/metrics"
)

// TokenKind names a capability: the type= value requested from meta=tokens
// and the key the token comes back under.
type TokenKind interface {
	InType() string
	OutType() string
}

// Token kinds. Each is a zero-size marker used as Token's type parameter.
type (
	CreateAccount struct{}
	Csrf          struct{}
	Login         struct{}
	Patrol        struct{}
	Rollback      struct{}
	UserRights    struct{}
	Watch         struct{}
)

func (CreateAccount) InType() string  { return "createaccount" }
func (CreateAccount) OutType() string { return "createaccounttoken" }
func (Csrf) InType() string           { return "csrf" }
func (Csrf) OutType() string          { return "csrftoken" }
func (Login) InType() string          { return "login" }
func (Login) OutType() string         { return "logintoken" }
func (Patrol) InType() string         { return "patrol" }
func (Patrol) OutType() string        { return "patroltoken" }
func (Rollback) InType() string       { return "rollback" }
func (Rollback) OutType() string      { return "rollbacktoken" }
func (UserRights) InType() string     { return "userrights" }
func (UserRights) OutType() string    { return "userrightstoken" }
func (Watch) InType() string          { return "watch" }
func (Watch) OutType() string         { return "watchtoken" }

// Token is a capability token bound to kind K. An action that needs a CSRF
// token takes a Token[Csrf], so passing a token of another kind does not compile.
type Token[K TokenKind] struct {
	value string
}

// NewToken wraps a token value obtained elsewhere
func NewToken[K TokenKind](value string) Token[K] {
	return Token[K]{value: value}
}

// Value returns the token string to send to the API
func (t Token[K]) Value() string {
	return t.value
}

// Kind returns the capability name, e.g. "csrf"
func (t Token[K]) Kind() string {
	var k K
	return k.InType()
}

// String redacts the value so tokens can be logged safely
func (t Token[K]) String() string {
	return fmt.Sprintf("Token[%s](***)", t.Kind())
}

// GoString redacts the value for %#v
func (t Token[K]) GoString() string {
	return t.String()
}

// GetToken fetches a token of kind K. Tokens are not cached or refreshed; a
// rejected token surfaces as the API error of the call that used it.
func GetToken[K TokenKind](ctx context.Context, s *Session) (Token[K], error) {
	var k K
	resp, err := s.Request().
		Arg("action", "query").
		Arg("meta", "tokens").
		Arg("type", k.InType()).
		Get(ctx)
	if err != nil {
		return Token[K]{}, err
	}

	value, err := resp.GetString("query", "tokens", k.OutType())
	if err != nil {
		return Token[K]{}, err
	}

	metrics.RecordToken(k.InType())
	return Token[K]{value: value}, nil
}

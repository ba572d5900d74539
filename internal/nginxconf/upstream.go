package nginxconf

import (
	"net/url"
	"strings"

	"github.com/samber/lo"

	"enr/internal/common/errs"
)

// proxy_pass only speaks these.
var supportedSchemes = []string{"http", "https"}

type Upstream struct {
	Scheme   string
	Host     string // host[:port] as given
	Path     string // escaped path, unchanged
	RawQuery string
}

// ParseUpstream accepts scheme://host[:port][/path]. Anything without a scheme
// or host, such as "localhost:3000", is rejected rather than rendered into a
// broken proxy_pass.
func ParseUpstream(raw string) (Upstream, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Upstream{}, errs.Newf(errs.Render, errs.TagInvalidUpstream, "cannot parse %q: %v", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Upstream{}, errs.Newf(errs.Render, errs.TagInvalidUpstream,
			"%q must look like scheme://host[:port][/path]", raw)
	}
	scheme := strings.ToLower(u.Scheme)
	if !lo.Contains(supportedSchemes, scheme) {
		return Upstream{}, errs.Newf(errs.Render, errs.TagInvalidUpstream,
			"unsupported scheme %q in %q (want http or https)", u.Scheme, raw)
	}

	return Upstream{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     u.EscapedPath(),
		RawQuery: u.RawQuery,
	}, nil
}

// Origin is scheme://host without path.
func (u Upstream) Origin() string {
	return u.Scheme + "://" + u.Host
}

func (u Upstream) TLS() bool {
	return u.Scheme == "https"
}

// String is the normalized proxy target.
func (u Upstream) String() string {
	s := u.Origin() + u.Path
	if u.RawQuery != "" {
		s += "?" + u.RawQuery
	}
	return s
}

package nginxconf

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	crossplane "github.com/nginxinc/nginx-go-crossplane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enr/internal/common/errs"
	"enr/internal/common/request"
)

func TestRenderExampleDefaults(t *testing.T) {
	out, err := Render(request.ProxyRequest{
		Domain:   "example.com",
		Upstream: "http://localhost:3000",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "    listen 80;\n")
	assert.Contains(t, out, "        proxy_pass http://localhost:3000;\n")
	assert.Contains(t, out, "proxy_set_header Host $host;")
	assert.Contains(t, out, "proxy_set_header X-Real-IP $remote_addr;")
	assert.Contains(t, out, "proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;")
	assert.Contains(t, out, "proxy_set_header X-Forwarded-Proto $scheme;")
	assert.Contains(t, out, "proxy_set_header Upgrade $http_upgrade;")
	assert.Contains(t, out, `proxy_set_header Connection "upgrade";`)
	assert.Contains(t, out, "proxy_redirect http://localhost:3000/ /;")
	assert.NotContains(t, out, "proxy_ssl_server_name")
}

func TestRenderIsDeterministic(t *testing.T) {
	req := request.ProxyRequest{Domain: "api.example.org", Upstream: "https://10.0.0.5:8443/v1", Port: 8080}
	first, err := Render(req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Render(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderSingleServerNameAndProxyPass(t *testing.T) {
	inputs := []request.ProxyRequest{
		{Domain: "example.com", Upstream: "http://localhost:3000"},
		{Domain: "a.b.example.com", Upstream: "https://backend.internal/app/", Port: 8443},
		{Domain: "weird_domain!", Upstream: "HTTP://127.0.0.1:9000/x?y=1"},
	}
	for _, in := range inputs {
		t.Run(in.Domain, func(t *testing.T) {
			out, err := Render(in)
			require.NoError(t, err)

			serverName := regexp.MustCompile(`(?m)^\s*server_name ` + regexp.QuoteMeta(in.Domain) + `;$`)
			assert.Len(t, serverName.FindAllString(out, -1), 1)
			assert.Equal(t, 1, strings.Count(out, "proxy_pass "))
		})
	}
}

func TestRenderUpstreamPathAndScheme(t *testing.T) {
	out, err := Render(request.ProxyRequest{Domain: "x.test", Upstream: "HTTPS://Backend:8443/api/v2/"})
	require.NoError(t, err)

	assert.Contains(t, out, "proxy_pass https://Backend:8443/api/v2/;")
	assert.Contains(t, out, "proxy_ssl_server_name on;")
	assert.Contains(t, out, "proxy_redirect https://Backend:8443/ /;")
}

func TestRenderRedirectMode(t *testing.T) {
	out, err := Render(request.ProxyRequest{
		Domain:   "old.example.com",
		Upstream: "https://new.example.com",
		Port:     8080,
		Mode:     request.ModeRedirect,
	})
	require.NoError(t, err)

	assert.Contains(t, out, "listen 8080;")
	assert.Contains(t, out, "return 301 https://new.example.com$request_uri;")
	assert.NotContains(t, out, "proxy_pass")
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		req  request.ProxyRequest
		tag  string
	}{
		{"missing scheme", request.ProxyRequest{Domain: "example.com", Upstream: "localhost:3000"}, errs.TagInvalidUpstream},
		{"bare host", request.ProxyRequest{Domain: "example.com", Upstream: "localhost"}, errs.TagInvalidUpstream},
		{"no host", request.ProxyRequest{Domain: "example.com", Upstream: "http://"}, errs.TagInvalidUpstream},
		{"bad scheme", request.ProxyRequest{Domain: "example.com", Upstream: "ftp://files.local"}, errs.TagInvalidUpstream},
		{"unparsable", request.ProxyRequest{Domain: "example.com", Upstream: "http://[::1"}, errs.TagInvalidUpstream},
		{"empty domain", request.ProxyRequest{Domain: "  ", Upstream: "http://localhost"}, errs.TagEmptyDomain},
		{"port too big", request.ProxyRequest{Domain: "example.com", Upstream: "http://localhost", Port: 70000}, errs.TagInvalidPort},
		{"negative port", request.ProxyRequest{Domain: "example.com", Upstream: "http://localhost", Port: -1}, errs.TagInvalidPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.req)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errs.HasTag(err, tt.tag), "got %v", err)
			assert.Equal(t, int(errs.Render), errs.ExitCode(err))
		})
	}
}

func TestParseUpstreamString(t *testing.T) {
	u, err := ParseUpstream(" http://localhost:3000/app?x=1#frag ")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:3000", u.Host)
	assert.Equal(t, "http://localhost:3000/app?x=1", u.String())
	assert.Equal(t, "http://localhost:3000", u.Origin())
	assert.False(t, u.TLS())
}

// The rendered block has to be something nginx itself would load.
func TestRenderParsesAsNginx(t *testing.T) {
	for _, mode := range []request.Mode{request.ModeProxy, request.ModeRedirect} {
		t.Run(string(mode), func(t *testing.T) {
			out, err := Render(request.ProxyRequest{
				Domain:   "example.com",
				Upstream: "https://localhost:3000/app",
				Mode:     mode,
			})
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "nginx.conf")
			full := "events {}\nhttp {\n" + out + "}\n"
			require.NoError(t, os.WriteFile(path, []byte(full), 0644))

			payload, err := crossplane.Parse(path, &crossplane.ParseOptions{SingleFile: true})
			require.NoError(t, err)
			require.Len(t, payload.Config, 1)

			server := findDirective(t, payload.Config[0].Parsed, "http", "server")
			require.NotNil(t, server)
			names := filterDirectives(server.Block, "server_name")
			require.Len(t, names, 1)
			assert.Equal(t, []string{"example.com"}, names[0].Args)

			listen := filterDirectives(server.Block, "listen")
			require.Len(t, listen, 1)
			assert.Equal(t, []string{"80"}, listen[0].Args)

			location := filterDirectives(server.Block, "location")
			require.Len(t, location, 1)
			passes := filterDirectives(location[0].Block, "proxy_pass")
			if mode == request.ModeProxy {
				require.Len(t, passes, 1)
				assert.Equal(t, []string{"https://localhost:3000/app"}, passes[0].Args)
			} else {
				assert.Empty(t, passes)
			}
		})
	}
}

func findDirective(t *testing.T, dirs crossplane.Directives, path ...string) *crossplane.Directive {
	t.Helper()
	for _, d := range dirs {
		if d.Directive != path[0] {
			continue
		}
		if len(path) == 1 {
			return d
		}
		return findDirective(t, d.Block, path[1:]...)
	}
	return nil
}

func filterDirectives(dirs crossplane.Directives, name string) []*crossplane.Directive {
	var out []*crossplane.Directive
	for _, d := range dirs {
		if d.Directive == name {
			out = append(out, d)
		}
	}
	return out
}

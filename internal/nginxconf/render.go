package nginxconf

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"enr/internal/common/errs"
	"enr/internal/common/request"
)

const DefaultPort = 80

const serverTemplate = `server {
    listen {{ .Port }};
    server_name {{ .Domain }};

    location / {
{{- if .Redirect }}
        return 301 {{ .Upstream }}$request_uri;
{{- else }}
        proxy_pass {{ .Upstream }};
        proxy_http_version 1.1;

        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;

        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
{{- if .Upstream.TLS }}
        proxy_ssl_server_name on;
{{- end }}

        proxy_redirect {{ .Upstream.Origin }}/ /;
{{- end }}
    }
}
`

var serverTmpl = template.Must(template.New("server").Parse(serverTemplate))

type templateData struct {
	Port     int
	Domain   string
	Upstream Upstream
	Redirect bool
}

// Render produces the server block for req. The output depends on req only,
// so identical requests yield identical bytes.
//
// The domain goes into server_name verbatim. Nothing checks it against
// hostname rules.
func Render(req request.ProxyRequest) (string, error) {
	if strings.TrimSpace(req.Domain) == "" {
		return "", errs.New(errs.Render, errs.TagEmptyDomain, fmt.Errorf("domain must not be empty"))
	}
	port := req.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return "", errs.Newf(errs.Render, errs.TagInvalidPort, "port %d out of range 1-65535", req.Port)
	}

	upstream, err := ParseUpstream(req.Upstream)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = serverTmpl.Execute(&buf, templateData{
		Port:     port,
		Domain:   req.Domain,
		Upstream: upstream,
		Redirect: req.Mode == request.ModeRedirect,
	})
	if err != nil {
		return "", errs.New(errs.Render, errs.TagTemplate, fmt.Errorf("failed to execute template: %w", err))
	}
	return buf.String(), nil
}

package request

// Mode selects what the generated server block does with requests.
type Mode string

const (
	ModeProxy    Mode = "proxy"    // proxy_pass to the upstream
	ModeRedirect Mode = "redirect" // 301 to the upstream
)

// ProxyRequest is what one invocation asks for. It is built once from the
// command line and not modified afterwards.
type ProxyRequest struct {
	Domain   string
	Upstream string
	Port     int
	Mode     Mode
}

type PortMapping struct {
	HostIP        string // empty binds every interface
	HostPort      string
	ContainerPort string
}

// LaunchSpec describes one container start.
type LaunchSpec struct {
	Runtime    string // runtime binary for the CLI engine
	Image      string
	ConfigPath string // host path of the rendered config
	MountPath  string // where nginx reads it inside the container
	Ports      []PortMapping
	Name       string
	Network    string
	Detach     bool
	Replace    bool // remove a same-named container first
}

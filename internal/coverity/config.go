// Package coverity models a Coverity Connect server and the transport used to
// reach it.
//
// The package owns the boundary between covcheck and the remote analysis
// server: address/credential validation ([NewServerConfig]), the read-only
// snapshot of configured instances ([Instances]), the transport contract
// ([Connector], [Session]) and a REST implementation of it ([Client]).
//
// Key types:
//   - [ServerConfig] is an immutable, validated server address plus credentials
//   - [Connector] establishes sessions and probes connectivity
//   - [Session] runs remote queries (views, issue counts) once connected
//   - [MockConnector] and [MockSession] stand in for a server in tests
package coverity

import (
	"fmt"
	"net/url"
	"strings"
)

// Credentials are the username and password used for HTTP basic auth.
type Credentials struct {
	Username string
	Password string
}

// Anonymous reports whether no credential fields are set.
func (c Credentials) Anonymous() bool {
	return c.Username == "" && c.Password == ""
}

// ServerConfig is a validated server address with optional credentials.
//
// Build it with [NewServerConfig]; the zero value is not usable. A ServerConfig
// is owned by the call that built it and is never mutated afterward.
type ServerConfig struct {
	// URL is the absolute base address of the server.
	URL *url.URL

	// Credentials is nil for anonymous access.
	Credentials *Credentials
}

// NewServerConfig parses address and checks the credential pair.
//
// A malformed address yields a [*MalformedURLError], which callers must keep
// distinct from network failures. Credentials are both-or-neither: supplying
// only one of username/password yields an error wrapping [ErrIllegalArgument].
// Nil or fully empty credentials mean anonymous access.
func NewServerConfig(address string, creds *Credentials) (ServerConfig, error) {
	u, err := parseServerURL(address)
	if err != nil {
		return ServerConfig{}, err
	}

	cfg := ServerConfig{URL: u}
	if creds != nil && !creds.Anonymous() {
		if creds.Username == "" || creds.Password == "" {
			return ServerConfig{}, fmt.Errorf("%w: username and password must both be provided", ErrIllegalArgument)
		}
		c := *creds
		cfg.Credentials = &c
	}
	return cfg, nil
}

func parseServerURL(address string) (*url.URL, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, &MalformedURLError{URL: address, Reason: "no URL provided"}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &MalformedURLError{URL: address, Reason: err.Error()}
	}
	switch u.Scheme {
	case "http", "https":
	case "":
		return nil, &MalformedURLError{URL: address, Reason: "no protocol"}
	default:
		return nil, &MalformedURLError{URL: address, Reason: "unknown protocol: " + u.Scheme}
	}
	if u.Host == "" {
		return nil, &MalformedURLError{URL: address, Reason: "missing host"}
	}
	return u, nil
}

// String returns the server address.
func (c ServerConfig) String() string {
	if c.URL == nil {
		return ""
	}
	return c.URL.String()
}

// Endpoint resolves path against the server base URL, keeping any base path
// the server is mounted under.
func (c ServerConfig) Endpoint(path string, query url.Values) string {
	u := *c.URL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	} else {
		u.RawQuery = ""
	}
	return u.String()
}

// Instance is one configured server: the URL doubles as its display name.
type Instance struct {
	URL         string
	Credentials *Credentials
}

// ServerConfig validates the instance into a [ServerConfig].
func (i Instance) ServerConfig() (ServerConfig, error) {
	return NewServerConfig(i.URL, i.Credentials)
}

// Instances is a read-only snapshot of configured servers, passed explicitly
// by callers instead of being looked up from process-wide state.
type Instances []Instance

// Empty reports whether no instances are configured.
func (is Instances) Empty() bool {
	return len(is) == 0
}

// Find returns the instance whose URL matches u, ignoring a trailing slash.
func (is Instances) Find(u string) (Instance, bool) {
	want := normalizeInstanceURL(u)
	for _, inst := range is {
		if normalizeInstanceURL(inst.URL) == want {
			return inst, true
		}
	}
	return Instance{}, false
}

// URLs returns the instance URLs in configuration order.
func (is Instances) URLs() []string {
	out := make([]string, len(is))
	for i, inst := range is {
		out[i] = inst.URL
	}
	return out
}

func normalizeInstanceURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

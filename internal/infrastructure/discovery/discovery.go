package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/config"
)

// ErrDisabled is returned by Advertise when discovery is switched off.
var ErrDisabled = errors.New("discovery: disabled in configuration")

const (
	defaultBrowseTimeout = 3 * time.Second
	browseBuffer         = 16
)

// Advertiser publishes the HTTP API over mDNS.
type Advertiser struct {
	server  *mdns.Server
	service *mdns.MDNSService
}

// Info describes the advertised instance.
type Info struct {
	Port    int
	Version string
	SiteID  string
	Host    string   // empty uses the machine hostname
	IPs     []net.IP // empty resolves Host
}

// Advertise starts answering mDNS queries for the configured service.
//
// Parameters:
//   - cfg: discovery section of the config
//   - info: port and TXT record values
//
// Returns:
//   - *Advertiser: running advertiser; call Close to withdraw
//   - error: ErrDisabled, or if the zone or multicast listener fails
func Advertise(cfg config.DiscoveryConfig, info Info) (*Advertiser, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	service, err := newService(cfg, info)
	if err != nil {
		return nil, err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("starting mdns server: %w", err)
	}
	return &Advertiser{server: server, service: service}, nil
}

func newService(cfg config.DiscoveryConfig, info Info) (*mdns.MDNSService, error) {
	instance := cfg.Instance
	if instance == "" {
		instance = "cecctl"
	}
	host := info.Host
	if host != "" && !strings.HasSuffix(host, ".") {
		host += "."
	}

	service, err := mdns.NewMDNSService(instance, cfg.Service, cfg.Domain, host, info.Port, info.IPs, txtRecords(info))
	if err != nil {
		return nil, fmt.Errorf("building mdns zone: %w", err)
	}
	return service, nil
}

func txtRecords(info Info) []string {
	txt := []string{"path=/"}
	if info.Version != "" {
		txt = append(txt, "version="+info.Version)
	}
	if info.SiteID != "" {
		txt = append(txt, "site="+info.SiteID)
	}
	return txt
}

// Close stops answering queries. Safe on nil.
func (a *Advertiser) Close() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Instance is a cecctl found on the network.
type Instance struct {
	Name string            `json:"name"`
	Host string            `json:"host"`
	Addr string            `json:"addr"`
	Port int               `json:"port"`
	TXT  map[string]string `json:"txt,omitempty"`
}

// Browser browses for peers with a fixed configuration.
type Browser struct {
	cfg     config.DiscoveryConfig
	timeout time.Duration
}

// NewBrowser returns a Browser for the configured service.
func NewBrowser(cfg config.DiscoveryConfig, timeout time.Duration) *Browser {
	return &Browser{cfg: cfg, timeout: timeout}
}

// Browse runs one query. See the package-level Browse.
func (b *Browser) Browse(ctx context.Context) ([]Instance, error) {
	return Browse(ctx, b.cfg, b.timeout)
}

// Browse queries the network for other instances of the service until the
// timeout elapses or ctx is cancelled.
func Browse(ctx context.Context, cfg config.DiscoveryConfig, timeout time.Duration) ([]Instance, error) {
	if timeout <= 0 {
		timeout = defaultBrowseTimeout
	}

	entries := make(chan *mdns.ServiceEntry, browseBuffer)
	errCh := make(chan error, 1)
	go func() {
		params := &mdns.QueryParam{
			Service:             cfg.Service,
			Domain:              strings.TrimSuffix(cfg.Domain, "."),
			Timeout:             timeout,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
		}
		errCh <- mdns.Query(params)
		close(entries)
	}()

	var found []Instance
	for entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if inst, ok := instanceFromEntry(entry); ok {
			found = append(found, inst)
		}
	}
	if err := ctx.Err(); err != nil {
		return found, err
	}
	if err := <-errCh; err != nil {
		return found, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

func instanceFromEntry(entry *mdns.ServiceEntry) (Instance, bool) {
	if entry == nil || entry.AddrV4 == nil {
		return Instance{}, false
	}
	inst := Instance{
		Name: entry.Name,
		Host: entry.Host,
		Addr: entry.AddrV4.String(),
		Port: entry.Port,
	}
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		if inst.TXT == nil {
			inst.TXT = make(map[string]string)
		}
		inst.TXT[key] = value
	}
	return inst, true
}

// Package consul registers the service with the local consul agent.
package consul

import (
	"fmt"
	"net"
	"os"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

func NewClient(addr string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}
	return client, nil
}

// Registration describes this instance to consul.
type Registration struct {
	Name       string
	HTTPAddr   string
	HealthPath string
	Tags       []string
}

// ServiceID is unique per host so several instances can register side by side.
func (r Registration) ServiceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return r.Name + "-" + host
}

// RegisterService registers the instance with an HTTP health check and returns its id.
func RegisterService(client *consulapi.Client, r Registration) (string, error) {
	host, portStr, err := net.SplitHostPort(r.HTTPAddr)
	if err != nil {
		return "", fmt.Errorf("parsing http address %q: %w", r.HTTPAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("parsing http port %q: %w", portStr, err)
	}
	if host == "" {
		host, err = os.Hostname()
		if err != nil {
			return "", fmt.Errorf("resolving hostname: %w", err)
		}
	}

	id := r.ServiceID()
	reg := &consulapi.AgentServiceRegistration{
		ID:      id,
		Name:    r.Name,
		Address: host,
		Port:    port,
		Tags:    r.Tags,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", host, port, r.HealthPath),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := client.Agent().ServiceRegister(reg); err != nil {
		return "", fmt.Errorf("registering %s with consul: %w", id, err)
	}
	return id, nil
}

func Deregister(client *consulapi.Client, id string) error {
	if err := client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("deregistering %s from consul: %w", id, err)
	}
	return nil
}

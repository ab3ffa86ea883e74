package consul

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	mu           sync.Mutex
	registered   []consulapi.AgentServiceRegistration
	deregistered []string
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.URL.Path == "/v1/agent/service/register":
		var reg consulapi.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.registered = append(f.registered, reg)
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		f.deregistered = append(f.deregistered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	default:
		http.NotFound(w, r)
	}
}

func TestRegisterAndDeregister(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	defer srv.Close()

	client, err := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	id, err := RegisterService(client, Registration{
		Name:       "store",
		HTTPAddr:   "10.0.0.5:8080",
		HealthPath: "/ping",
		Tags:       []string{"http"},
	})
	require.NoError(t, err)
	require.Len(t, agent.registered, 1)

	reg := agent.registered[0]
	assert.Equal(t, id, reg.ID)
	assert.Equal(t, "store", reg.Name)
	assert.Equal(t, "10.0.0.5", reg.Address)
	assert.Equal(t, 8080, reg.Port)
	require.NotNil(t, reg.Check)
	assert.Equal(t, "http://10.0.0.5:8080/ping", reg.Check.HTTP)

	require.NoError(t, Deregister(client, id))
	assert.Equal(t, []string{id}, agent.deregistered)
}

func TestRegisterRejectsBadAddress(t *testing.T) {
	client, err := NewClient("127.0.0.1:1")
	require.NoError(t, err)
	_, err = RegisterService(client, Registration{Name: "store", HTTPAddr: "no-port"})
	assert.Error(t, err)
}

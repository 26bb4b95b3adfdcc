package google

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

type fakeRunner struct {
	out      []byte
	err      error
	lookErr  error
	lastName string
	lastArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.lastName = name
	f.lastArgs = args
	return f.out, f.err
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.lookErr != nil {
		return "", f.lookErr
	}
	return "/usr/bin/" + file, nil
}

const firewallsJSON = `[
  {
    "name": "default-allow-ssh",
    "network": "https://www.googleapis.com/compute/v1/projects/demo/global/networks/default",
    "direction": "INGRESS",
    "priority": 65534,
    "sourceRanges": ["0.0.0.0/0"],
    "allowed": [{"IPProtocol": "tcp", "ports": ["22"]}]
  },
  {
    "name": "allow-everything",
    "sourceRanges": ["0.0.0.0/0"],
    "allowed": [{"IPProtocol": "all"}],
    "disabled": true
  }
]`

func collect(t *testing.T, r Runner) *cache.Cache {
	t.Helper()
	c := NewCollectorWithRunner("demo", r)
	plan, err := c.Catalog().Plan([]cache.API{ListFirewalls}, []string{"us-central1"})
	require.NoError(t, err)
	store := cache.New()
	_, err = collector.NewScheduler(collector.Options{}).Run(context.Background(), plan, store)
	require.NoError(t, err)
	store.Freeze()
	return store
}

func TestListFirewalls_DecodesGcloudOutput(t *testing.T) {
	r := &fakeRunner{out: []byte(firewallsJSON)}
	store := collect(t, r)

	assert.Equal(t, "gcloud", r.lastName)
	assert.Equal(t, []string{"compute", "firewall-rules", "list", "--project", "demo", "--format=json"}, r.lastArgs)

	node, ok := store.Get(ListFirewalls.Key(GlobalRegion))
	require.True(t, ok, "firewalls are recorded under the global region only")
	firewalls, ok := cache.As[[]Firewall](node)
	require.True(t, ok)
	require.Len(t, firewalls, 2)
	assert.Equal(t, "default-allow-ssh", firewalls[0].Name)
	assert.Equal(t, []string{"22"}, firewalls[0].Allowed[0].Ports)
	assert.True(t, firewalls[1].Disabled)
	assert.True(t, firewalls[1].Ingress())

	_, ok = store.Get(ListFirewalls.Key("us-central1"))
	assert.False(t, ok)
}

func TestListFirewalls_EmptyProject(t *testing.T) {
	store := collect(t, &fakeRunner{out: []byte("[]")})
	node, ok := store.Get(ListFirewalls.Key(GlobalRegion))
	require.True(t, ok)
	firewalls, ok := cache.As[[]Firewall](node)
	require.True(t, ok)
	assert.Empty(t, firewalls)
}

func TestListFirewalls_CommandError(t *testing.T) {
	store := collect(t, &fakeRunner{err: errors.New("gcloud exited 1: permission denied")})
	node, ok := store.Get(ListFirewalls.Key(GlobalRegion))
	require.True(t, ok)
	assert.False(t, node.OK())
	assert.Contains(t, node.ErrorMessage(), "permission denied")
}

func TestListFirewalls_InvalidJSON(t *testing.T) {
	store := collect(t, &fakeRunner{out: []byte("Listed 0 items.")})
	node, _ := store.Get(ListFirewalls.Key(GlobalRegion))
	require.NotNil(t, node)
	assert.Contains(t, node.ErrorMessage(), "invalid gcloud json output")
}

func TestCheck(t *testing.T) {
	assert.ErrorIs(t, NewCollectorWithRunner("", &fakeRunner{}).Check(), ErrNoProject)
	assert.Error(t, NewCollectorWithRunner("demo", &fakeRunner{lookErr: errors.New("not found")}).Check())
	assert.NoError(t, NewCollectorWithRunner("demo", &fakeRunner{}).Check())
}

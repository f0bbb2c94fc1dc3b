package datafeed

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

type mapSecrets map[string]string

func (m mapSecrets) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func testPrivateKey(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	return string(pem.EncodeToMemory(block))
}

func TestResolveSSHCredentials(t *testing.T) {
	t.Run("password", func(t *testing.T) {
		creds, err := ResolveSSHCredentials(mapSecrets{
			"router:username": "admin",
			"router:password": "hunter2",
		}, "router")
		require.NoError(t, err)
		assert.Equal(t, SSHCredentials{Username: "admin", Password: "hunter2"}, creds)
	})

	t.Run("missing username", func(t *testing.T) {
		_, err := ResolveSSHCredentials(mapSecrets{"router:password": "x"}, "router")
		assert.ErrorContains(t, err, "username")
	})

	t.Run("missing auth", func(t *testing.T) {
		_, err := ResolveSSHCredentials(mapSecrets{"router:username": "admin"}, "router")
		assert.ErrorContains(t, err, "private_key")
	})
}

func TestBuildSSHConfig(t *testing.T) {
	t.Run("private key", func(t *testing.T) {
		cfg, err := buildSSHConfig(SSHCredentials{Username: "ops", PrivateKey: testPrivateKey(t)}, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "ops", cfg.User)
		assert.Len(t, cfg.Auth, 1)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("bad key", func(t *testing.T) {
		_, err := buildSSHConfig(SSHCredentials{Username: "ops", PrivateKey: "garbage"}, time.Second)
		assert.ErrorContains(t, err, "failed to parse private key")
	})

	t.Run("password", func(t *testing.T) {
		cfg, err := buildSSHConfig(SSHCredentials{Username: "ops", Password: "pw"}, time.Second)
		require.NoError(t, err)
		assert.Len(t, cfg.Auth, 1)
	})

	t.Run("no auth", func(t *testing.T) {
		_, err := buildSSHConfig(SSHCredentials{Username: "ops"}, time.Second)
		assert.Error(t, err)
	})
}

func TestNewSSHCommandFeed_Defaults(t *testing.T) {
	feed, err := NewSSHCommandFeed("pi.lan", 0, "uptime", SSHCredentials{Username: "pi", Password: "pw"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 22, feed.port)
	assert.Equal(t, 10*time.Second, feed.timeout)
	assert.Equal(t, "SSH pi.lan: uptime", feed.String())
}

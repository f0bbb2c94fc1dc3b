package datafeed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"doodledash/internal/domain"
)

// SSHCredentials authenticate an SSH session. Either PrivateKey or Password
// must be set.
type SSHCredentials struct {
	Username   string
	PrivateKey string
	Passphrase string
	Password   string
}

// ResolveSSHCredentials reads the fields of an SSH secret through the
// resolver, using keys of the form "<secret>:<field>"
func ResolveSSHCredentials(secrets domain.SecretResolver, secret string) (SSHCredentials, error) {
	get := func(field string) string {
		v, _ := secrets.Lookup(secret + ":" + field)
		return v
	}

	creds := SSHCredentials{
		Username:   get("username"),
		PrivateKey: get("private_key"),
		Passphrase: get("passphrase"),
		Password:   get("password"),
	}
	if creds.Username == "" {
		return creds, fmt.Errorf("username not found in SSH secret %q", secret)
	}
	if creds.PrivateKey == "" && creds.Password == "" {
		return creds, fmt.Errorf("neither private_key nor password found in SSH secret %q", secret)
	}
	return creds, nil
}

// SSHCommandFeed runs a command on a remote host on every poll. Each
// non-empty output line becomes a message.
type SSHCommandFeed struct {
	domain.Named
	host    string
	port    int
	command string
	timeout time.Duration
	config  *ssh.ClientConfig
}

// NewSSHCommandFeed builds the client configuration up front so bad keys
// fail at load time rather than on the first poll
func NewSSHCommandFeed(host string, port int, command string, creds SSHCredentials, timeout time.Duration) (*SSHCommandFeed, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if port == 0 {
		port = 22
	}

	config, err := buildSSHConfig(creds, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	return &SSHCommandFeed{
		host:    host,
		port:    port,
		command: command,
		timeout: timeout,
		config:  config,
	}, nil
}

// LatestEntities implements domain.DataFeed
func (f *SSHCommandFeed) LatestEntities(ctx context.Context) ([]domain.Message, error) {
	client, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	output, err := f.run(ctx, client)
	if err != nil {
		return nil, err
	}

	source := "ssh:" + f.host
	var msgs []domain.Message
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, domain.NewMessage(line, source))
		}
	}
	return msgs, nil
}

func (f *SSHCommandFeed) String() string {
	return fmt.Sprintf("SSH %s: %s", f.host, f.command)
}

func (f *SSHCommandFeed) connect(ctx context.Context) (*ssh.Client, error) {
	addr := net.JoinHostPort(f.host, strconv.Itoa(f.port))

	dialer := &net.Dialer{Timeout: f.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, f.config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// run executes the command, returning its output even when it exits non-zero
func (f *SSHCommandFeed) run(ctx context.Context, client *ssh.Client) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(f.command)
		done <- result{out, err}
	}()

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		var exitErr *ssh.ExitError
		if r.err != nil && !errors.As(r.err, &exitErr) {
			return "", fmt.Errorf("command failed: %w", r.err)
		}
		return string(r.output), nil
	case <-timer.C:
		return "", fmt.Errorf("command timed out after %s", f.timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func buildSSHConfig(creds SSHCredentials, timeout time.Duration) (*ssh.ClientConfig, error) {
	if creds.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	var auth ssh.AuthMethod
	switch {
	case creds.PrivateKey != "":
		var signer ssh.Signer
		var err error
		if creds.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(creds.PrivateKey), []byte(creds.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(creds.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = ssh.PublicKeys(signer)
	case creds.Password != "":
		auth = ssh.Password(creds.Password)
	default:
		return nil, fmt.Errorf("either a private key or a password is required")
	}

	return &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

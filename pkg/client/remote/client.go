package remote

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
)

// Client runs commands on a remote host over ssh and reaches its file
// system over sftp.
type Client struct {
	address string
	ssh     *ssh.Client
	sftp    *sftp.Client
	auth    *ssh.ClientConfig
	log     *logrus.Entry
}

type Config struct {
	Address    string
	User       string
	Password   string
	PrivateKey string
	Timeout    time.Duration
}

func New(conf *Config, log *logrus.Entry) (*Client, error) {
	var methods []ssh.AuthMethod
	if conf.PrivateKey != "" {
		key, err := os.ReadFile(conf.PrivateKey)
		if err != nil {
			return nil, err
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, err
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if conf.Password != "" {
		methods = append(methods, ssh.Password(conf.Password))
	}
	if len(methods) == 0 {
		return nil, ErrNoAuth
	}
	auth := &ssh.ClientConfig{
		User:            conf.User,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         conf.Timeout,
	}
	if auth.Timeout == 0 {
		auth.Timeout = 15 * time.Second
	}

	client := &Client{
		address: conf.Address,
		auth:    auth,
		log:     log,
	}

	err := client.connect()
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	sshClient, err := ssh.Dial("tcp", c.address, c.auth)
	if err != nil {
		return err
	}
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return err
	}
	c.ssh = sshClient
	c.sftp = sftpClient
	return nil
}

// Run executes cmd in a new session and returns its trimmed stdout. A
// nonzero exit status is reported as *CommandError. When ctx ends first the
// session is killed and ctx.Err() is returned.
func (c *Client) Run(ctx context.Context, cmd string) (string, error) {
	if c.ssh == nil {
		return "", ErrNotConnected
	}
	sess, err := c.ssh.NewSession()
	if err != nil {
		return "", err
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		c.log.Debugf("command abandoned: %s", cmd)
		return "", ctx.Err()
	case err = <-done:
	}

	output := strings.TrimRight(stdout.String(), "\n")
	if err != nil {
		for _, line := range strings.Split(strings.TrimRight(stderr.String(), "\n"), "\n") {
			c.log.Debugln(line)
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return output, &CommandError{
				Command:    cmd,
				Host:       c.address,
				ExitStatus: exitErr.ExitStatus(),
				Output:     strings.TrimSpace(stderr.String()),
			}
		}
		return output, err
	}
	return output, nil
}

// Files returns the remote file system.
func (c *Client) Files() files.FileSystem {
	return &sftpFiles{Client: c}
}

func (c *Client) Close() error {
	var errs []error
	if c.sftp != nil {
		errs = append(errs, c.sftp.Close())
	}
	if c.ssh != nil {
		errs = append(errs, c.ssh.Close())
	}
	return errors.Join(errs...)
}

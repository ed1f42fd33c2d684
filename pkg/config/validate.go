package config

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
)

func (c *Config) validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("invalid config: no hosts defined")
	}
	if err := c.validateNodes(); err != nil {
		return err
	}
	if err := c.validateProperties(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNodes() error {
	for name, node := range c.Nodes {
		if node == nil {
			return fmt.Errorf("invalid host <%s>: empty definition", name)
		}
		if node.User == "" {
			node.User = DefaultUser
		}
		if node.Local {
			continue
		}
		if node.Address == "" {
			node.Address = name
		}
		if node.SSHPort == 0 {
			node.SSHPort = DefaultSSHPort
		}
		if node.Password == "" && node.PrivateKey == "" {
			return fmt.Errorf("invalid host <%s>: missing password or private key", name)
		}
		if node.Password != "" {
			decPwd, err := base64.StdEncoding.DecodeString(node.Password)
			if err != nil {
				return fmt.Errorf("invalid host <%s>: invalid password", name)
			}
			node.Password = string(decPwd)
		}
	}
	return nil
}

func (c *Config) validateProperties() error {
	for _, name := range c.NodeNames() {
		props := c.HostProperties(name)
		home, ok := props.Lookup(HomeDirectory)
		if !ok || home == "" {
			return fmt.Errorf("invalid host <%s>: missing %s", name, HomeDirectory)
		}
		if !filepath.IsAbs(home) {
			return fmt.Errorf("invalid host <%s>: %s must be absolute, got '%s'", name, HomeDirectory, home)
		}
		for _, rs := range props.ReplicationServices() {
			if rs.DeploymentService == "" {
				return fmt.Errorf("invalid host <%s>: replication service <%s> has no %s", name, rs.Alias, DeploymentService)
			}
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"
)

type Node struct {
	Address    string         `yaml:"address"`
	SSHPort    int            `yaml:"sshPort"`
	User       string         `yaml:"user"`
	Password   string         `yaml:"password"`
	PrivateKey string         `yaml:"privateKey"`
	Local      bool           `yaml:"local"`
	Properties map[string]any `yaml:"properties"`
}

type Config struct {
	Defaults map[string]any   `yaml:"defaults"`
	Nodes    map[string]*Node `yaml:"hosts"`
}

// Parse reads the cluster file, expanding ${VAR} references from the
// environment before decoding.
func Parse(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}
	return ParseData(data)
}

func ParseData(data []byte) (*Config, error) {
	expanded, err := expandEnv(string(data))
	if err != nil {
		return nil, err
	}
	var config Config

	err = yaml.Unmarshal([]byte(expanded), &config)
	if err != nil {
		return nil, err
	}
	err = config.validate()
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// expandEnv replaces ${VAR} references with environment values. A reference
// to an unset variable is an error, property names such as ${home_directory}
// are not expanded here.
func expandEnv(data string) (string, error) {
	var missing []string
	expanded, err := envsubst.Eval(data, func(name string) string {
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if err != nil {
		return "", err
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("invalid config: undefined environment variable(s) %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// NodeNames returns the configured host names in sorted order.
func (c *Config) NodeNames() []string {
	names := make([]string, 0, len(c.Nodes))
	for name := range c.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HostProperties builds the property snapshot of one host: the shared
// defaults overlaid with the host's own properties.
func (c *Config) HostProperties(name string) *Properties {
	tree := deepCopy(c.Defaults)
	n, ok := c.Nodes[name]
	if ok {
		tree = merge(tree, n.Properties)
	}
	if home, ok := tree[HomeDirectory].(string); ok && home != "" {
		tree[HomeDirectory] = filepath.Clean(home)
	}
	if _, ok := tree[Host]; !ok {
		tree[Host] = name
	}
	if _, ok := tree[UserID]; !ok && n != nil && n.User != "" {
		tree[UserID] = n.User
	}
	return NewProperties(tree)
}

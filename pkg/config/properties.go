package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/drone/envsubst"
)

// Properties is the read-only property tree of one host. Values that are not
// configured fall back to their template value.
type Properties struct {
	tree map[string]any
}

// ReplicationService is the view on repl_services/<alias> used by the teardown.
type ReplicationService struct {
	Alias             string
	DeploymentService string
	BackupStorageDir  string
	RelayLogDir       string
	LogDir            string
	StartCommand      string
	Datasource        Datasource
}

type Datasource struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
}

// Directories returns the per service directories in deletion order.
func (s ReplicationService) Directories() []string {
	return []string{s.BackupStorageDir, s.RelayLogDir, s.LogDir}
}

func NewProperties(tree map[string]any) *Properties {
	return &Properties{tree: deepCopy(tree)}
}

// Lookup returns the configured value only.
func (p *Properties) Lookup(path ...string) (string, bool) {
	v, ok := p.node(path)
	if !ok || v == nil {
		return "", false
	}
	switch v.(type) {
	case map[string]any, []any:
		return "", false
	}
	return fmt.Sprint(v), true
}

// Get returns the configured value, the value of the defaults service for
// replication service keys, or the template value.
func (p *Properties) Get(path ...string) string {
	if v, ok := p.Lookup(path...); ok {
		return v
	}
	if isServiceKey(path) && path[1] != Defaults {
		if v, ok := p.Lookup(ReplServices, Defaults, path[2]); ok {
			return v
		}
	}
	return p.Template(path...)
}

func (p *Properties) Bool(path ...string) bool {
	b, err := strconv.ParseBool(p.Get(path...))
	return err == nil && b
}

// Template returns the expanded install-time value of a key, or "" when the
// key has no template.
func (p *Properties) Template(path ...string) string {
	tmpl, ok := templates[strings.Join(path, ".")]
	if !ok && isServiceKey(path) {
		tmpl, ok = templates[ReplServices+".*."+path[2]]
	}
	if !ok {
		return ""
	}
	value, err := envsubst.Eval(tmpl, func(name string) string {
		if isServiceKey(path) {
			if name == serviceAlias {
				return path[1]
			}
			if name != path[2] {
				if v := p.Get(path[0], path[1], name); v != "" {
					return v
				}
			}
		}
		if name == path[len(path)-1] {
			return ""
		}
		return p.Get(name)
	})
	if err != nil {
		return ""
	}
	return value
}

// Keys lists the child keys of a subtree in sorted order.
func (p *Properties) Keys(path ...string) []string {
	v, ok := p.node(path)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReplicationServices returns all configured services except the defaults
// entry, sorted by alias.
func (p *Properties) ReplicationServices() []ReplicationService {
	var services []ReplicationService
	for _, alias := range p.Keys(ReplServices) {
		if alias == Defaults {
			continue
		}
		get := func(key string) string {
			return p.Get(ReplServices, alias, key)
		}
		port, _ := strconv.Atoi(get(DatasourcePort))
		services = append(services, ReplicationService{
			Alias:             alias,
			DeploymentService: get(DeploymentService),
			BackupStorageDir:  get(ReplBackupStorageDir),
			RelayLogDir:       get(ReplRelayLogDir),
			LogDir:            get(ReplLogDir),
			StartCommand:      get(ReplDBServiceStart),
			Datasource: Datasource{
				Type:     get(DatasourceType),
				Host:     get(DatasourceHost),
				Port:     port,
				User:     get(DatasourceUser),
				Password: get(DatasourcePassword),
			},
		})
	}
	return services
}

func (p *Properties) node(path []string) (any, bool) {
	var cur any = p.tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func isServiceKey(path []string) bool {
	return len(path) == 3 && path[0] == ReplServices
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for k, v := range src {
		sm, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dm, _ := dst[k].(map[string]any)
		dst[k] = merge(dm, sm)
	}
	return dst
}

func deepCopy(src map[string]any) map[string]any {
	return merge(nil, src)
}

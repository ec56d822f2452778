package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

// Kubeconfig is one loaded kubeconfig file.
type Kubeconfig struct {
	Path   string
	Config *api.Config
}

// Context is a named context with its file of origin.
type Context struct {
	Name       string
	Cluster    string
	Namespace  string
	User       string
	Kubeconfig *Kubeconfig
}

// Manager discovers kubeconfig files and resolves contexts into REST
// configs.
type Manager struct {
	kubeconfigs []*Kubeconfig
	contexts    []*Context
}

func NewManager() *Manager {
	return &Manager{}
}

// Discover loads the explicit path when given, otherwise the main
// ~/.kube/config plus any extra valid kubeconfig files in ~/.kube.
func (m *Manager) Discover(explicit string) error {
	if explicit != "" {
		if err := m.loadFile(explicit); err != nil {
			return err
		}
		return m.buildContexts()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	kubeDir := filepath.Join(homeDir, ".kube")
	if _, err := os.Stat(kubeDir); os.IsNotExist(err) {
		return fmt.Errorf("kube directory does not exist: %s", kubeDir)
	}

	mainConfigPath := filepath.Join(kubeDir, "config")
	if _, err := os.Stat(mainConfigPath); err == nil {
		if err := m.loadFile(mainConfigPath); err != nil {
			return err
		}
	}

	err = filepath.Walk(kubeDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") || path == mainConfigPath {
			return nil
		}
		// Not every file in ~/.kube is a kubeconfig; skip failures.
		config, err := clientcmd.LoadFromFile(path)
		if err != nil {
			return nil
		}
		m.kubeconfigs = append(m.kubeconfigs, &Kubeconfig{Path: path, Config: config})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk kube directory: %w", err)
	}
	return m.buildContexts()
}

func (m *Manager) loadFile(path string) error {
	config, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig %s: %w", path, err)
	}
	m.kubeconfigs = append(m.kubeconfigs, &Kubeconfig{Path: path, Config: config})
	return nil
}

func (m *Manager) buildContexts() error {
	m.contexts = m.contexts[:0]
	for _, kc := range m.kubeconfigs {
		names := make([]string, 0, len(kc.Config.Contexts))
		for name := range kc.Config.Contexts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			context := kc.Config.Contexts[name]
			namespace := context.Namespace
			if namespace == "" {
				namespace = "default"
			}
			m.contexts = append(m.contexts, &Context{
				Name:       name,
				Cluster:    context.Cluster,
				Namespace:  namespace,
				User:       context.AuthInfo,
				Kubeconfig: kc,
			})
		}
	}
	return nil
}

// Kubeconfigs returns all loaded files.
func (m *Manager) Kubeconfigs() []*Kubeconfig { return m.kubeconfigs }

// Contexts returns all contexts across the loaded files.
func (m *Manager) Contexts() []*Context { return m.contexts }

// ContextByName finds a context by name, nil when unknown.
func (m *Manager) ContextByName(name string) *Context {
	for _, ctx := range m.contexts {
		if ctx.Name == name {
			return ctx
		}
	}
	return nil
}

// Current resolves the current-context of the first file that declares
// one.
func (m *Manager) Current() *Context {
	for _, kc := range m.kubeconfigs {
		if kc.Config.CurrentContext != "" {
			if ctx := m.ContextByName(kc.Config.CurrentContext); ctx != nil {
				return ctx
			}
		}
	}
	return nil
}

// RESTConfig builds a client-go REST config for a context.
func (m *Manager) RESTConfig(ctx *Context) (*rest.Config, error) {
	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: ctx.Kubeconfig.Path},
		&clientcmd.ConfigOverrides{
			CurrentContext: ctx.Name,
		},
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create client config: %w", err)
	}
	return config, nil
}

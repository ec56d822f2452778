package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	yaml "sigs.k8s.io/yaml"

	"github.com/luxury-yacht/kview/internal/grid"
	"github.com/luxury-yacht/kview/internal/krows"
	"github.com/luxury-yacht/kview/internal/testlog"
	"github.com/luxury-yacht/kview/internal/ui"
	"github.com/luxury-yacht/kview/pkg/appconfig"
	"github.com/luxury-yacht/kview/pkg/kubeconfig"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion    = flag.Bool("version", false, "Show version information")
		help           = flag.Bool("help", false, "Show help information")
		kubeconfigPath = flag.String("kubeconfig", "", "Path to a kubeconfig file (default: discover ~/.kube)")
		contextName    = flag.String("context", "", "Kubeconfig context (default: current-context)")
		namespace      = flag.String("namespace", "", "Namespace to list (default: context namespace)")
		resource       = flag.String("resource", "pods", "Resource to list: name, version/name or group/version/name")
		demo           = flag.Int("demo", 0, "Run offline with N synthetic pods")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *showVersion {
		showVersionInfo()
		return
	}

	logger := testlog.Setup()

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error(err, "config load failed, using defaults")
		cfg = appconfig.Default()
	}

	var panel *ui.Panel
	if *demo > 0 {
		panel = demoPanel(cfg, *demo)
	} else {
		panel, err = livePanel(cfg, *kubeconfigPath, *contextName, *namespace, *resource)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(
		ui.NewApp(panel),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseResource accepts "pods", "v1/pods" or "apps/v1/deployments".
func parseResource(s string) (schema.GroupVersionResource, error) {
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		return schema.GroupVersionResource{Version: "v1", Resource: parts[0]}, nil
	case 2:
		return schema.GroupVersionResource{Version: parts[0], Resource: parts[1]}, nil
	case 3:
		return schema.GroupVersionResource{Group: parts[0], Version: parts[1], Resource: parts[2]}, nil
	}
	return schema.GroupVersionResource{}, fmt.Errorf("invalid resource %q", s)
}

// guessKind derives a display kind from the resource name, e.g. pods ->
// Pod. Good enough for badges; the server table schema is authoritative
// for everything else.
func guessKind(resource string) string {
	singular := strings.TrimSuffix(resource, "s")
	if singular == "" {
		return ""
	}
	return strings.ToUpper(singular[:1]) + singular[1:]
}

func gridConfig(cfg *appconfig.Config) grid.Config {
	return grid.Config{
		OverscanRows:         cfg.Grid.OverscanRows,
		OverscanColumns:      cfg.Grid.OverscanColumns,
		VirtualizeRowsFrom:   cfg.Grid.VirtualizeRowsFrom,
		EstimatedRowPx:       cfg.Grid.EstimatedRowPx,
		AutoWidthDebounce:    cfg.Grid.AutoWidthDebounce.Duration,
		AutoWidthMinInterval: cfg.Grid.AutoWidthMinInterval.Duration,
		DoubleClickTimeout:   cfg.Input.Mouse.DoubleClickTimeout.Duration,
	}
}

func livePanel(cfg *appconfig.Config, kubeconfigPath, contextName, namespace, resource string) (*ui.Panel, error) {
	gvr, err := parseResource(resource)
	if err != nil {
		return nil, err
	}

	mgr := kubeconfig.NewManager()
	if err := mgr.Discover(kubeconfigPath); err != nil {
		return nil, err
	}
	kctx := mgr.Current()
	if contextName != "" {
		kctx = mgr.ContextByName(contextName)
	}
	if kctx == nil && len(mgr.Contexts()) > 0 {
		kctx = mgr.Contexts()[0]
	}
	if kctx == nil {
		return nil, fmt.Errorf("no usable kubeconfig context found")
	}
	if namespace == "" {
		namespace = kctx.Namespace
	}

	restCfg, err := mgr.RESTConfig(kctx)
	if err != nil {
		return nil, err
	}
	tc, err := krows.NewTableClient(restCfg)
	if err != nil {
		return nil, err
	}
	dyn, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	table, err := tc.List(ctx, gvr, namespace, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	gvk := schema.GroupVersionKind{Group: gvr.Group, Version: gvr.Version, Kind: guessKind(gvr.Resource)}
	list, err := krows.NewTableList(table, gvk, kctx.Name)
	if err != nil {
		return nil, err
	}

	gcfg := gridConfig(cfg)
	gcfg.Columns = list.Columns()
	gcfg.List = list

	var panel *ui.Panel
	// Visibility is controlled here: the grid reports changes and this
	// closure pushes the reconciled map back.
	gcfg.OnColumnVisibilityChange = func(v map[string]bool) {
		panel.Grid().SetColumnVisibility(v)
	}
	panel = ui.NewPanel(ui.PanelConfig{
		Title:       fmt.Sprintf("%s > %s > %s", kctx.Name, namespace, resource),
		Grid:        gcfg,
		ChromaStyle: cfg.Viewer.Theme,
		YAMLFor: func(r grid.Row) (string, error) {
			ns := grid.RowNamespace(r)
			name := rowName(r)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			obj, err := dyn.Resource(gvr).Namespace(ns).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				return "", err
			}
			data, err := yaml.Marshal(obj.Object)
			return string(data), err
		},
		Refresh: func() tea.Cmd {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			table, err := tc.List(ctx, gvr, namespace, metav1.ListOptions{})
			if err != nil {
				return nil
			}
			if err := list.Reset(table); err != nil {
				return nil
			}
			return panel.Grid().RowsChanged()
		},
	})
	panel.Grid().SetColumnVisibility(list.DefaultHidden())
	return panel, nil
}

// rowName extracts the object name from a row, falling back to the last
// key segment.
func rowName(r grid.Row) string {
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	key := r.Key()
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// demoPanel runs without a cluster: n synthetic pods in one namespace.
func demoPanel(cfg *appconfig.Config, n int) *ui.Panel {
	items := make([]unstructured.Unstructured, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := range items {
		pod := corev1.Pod{
			TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Pod"},
			ObjectMeta: metav1.ObjectMeta{
				Name:              fmt.Sprintf("demo-%03d", i),
				Namespace:         "default",
				CreationTimestamp: metav1.NewTime(base.Add(time.Duration(i) * time.Minute)),
			},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{{Name: "app", Image: "nginx:latest"}},
			},
			Status: corev1.PodStatus{Phase: corev1.PodRunning},
		}
		obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&pod)
		if err != nil {
			continue
		}
		items[i] = unstructured.Unstructured{Object: obj}
	}
	list := krows.NewObjectList(&unstructured.UnstructuredList{Items: items}, "demo")

	gcfg := gridConfig(cfg)
	gcfg.Columns = list.Columns()
	gcfg.List = list

	return ui.NewPanel(ui.PanelConfig{
		Title:       fmt.Sprintf("demo > default > pods (%d)", n),
		Grid:        gcfg,
		ChromaStyle: cfg.Viewer.Theme,
		YAMLFor: func(r grid.Row) (string, error) {
			o, ok := r.(interface {
				Object() *unstructured.Unstructured
			})
			if !ok {
				return "", fmt.Errorf("row %s carries no object", r.Key())
			}
			data, err := yaml.Marshal(o.Object().Object)
			return string(data), err
		},
	})
}

func showHelp() {
	fmt.Println("kview - a virtualized Kubernetes resource viewer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kview [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -kubeconfig  Path to a kubeconfig file")
	fmt.Println("  -context     Kubeconfig context to use")
	fmt.Println("  -namespace   Namespace to list")
	fmt.Println("  -resource    Resource to list (pods, apps/v1/deployments, ...)")
	fmt.Println("  -demo N      Run offline with N synthetic pods")
	fmt.Println("  -version     Show version information")
	fmt.Println("  -help        Show this help message")
	fmt.Println()
	fmt.Println("Key Bindings:")
	fmt.Println("  F3           View object YAML")
	fmt.Println("  F5           Refresh")
	fmt.Println("  F9           Column visibility")
	fmt.Println("  F10          Context menu")
	fmt.Println("  q, Ctrl+C    Quit")
	fmt.Println()
	fmt.Println("Navigation:")
	fmt.Println("  Up/Down, j/k Navigate rows")
	fmt.Println("  PgUp/PgDn    Page")
	fmt.Println("  Home/End     First/last row")
	fmt.Println("  Mouse        Click to focus, right click for menus,")
	fmt.Println("               drag column separators to resize")
}

func showVersionInfo() {
	fmt.Printf("kview version %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Date: %s\n", date)
}

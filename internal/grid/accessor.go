package grid

import (
	"reflect"
	"sync"
)

// Row shapes are heterogeneous: server-printed table rows, typed objects,
// plain field maps. Identity fields (kind, namespace, cluster) are pulled
// through a small accessor resolved once per concrete row type rather
// than per cell.

// KindProvider is implemented by rows that know their object kind.
type KindProvider interface {
	RowKind() string
}

// NamespaceProvider is implemented by rows that carry a namespace.
type NamespaceProvider interface {
	RowNamespace() string
}

// ClusterProvider is implemented by rows that carry a cluster name.
type ClusterProvider interface {
	RowCluster() string
}

// Accessor extracts identity fields from rows of one concrete type.
type Accessor struct {
	Kind      func(Row) string
	Namespace func(Row) string
	Cluster   func(Row) string
}

var accessorCache sync.Map // reflect.Type -> *Accessor

// accessorFor resolves the accessor for a row's concrete type, caching
// the result so the interface probes run once per type.
func accessorFor(r Row) *Accessor {
	t := reflect.TypeOf(r)
	if a, ok := accessorCache.Load(t); ok {
		return a.(*Accessor)
	}
	a := buildAccessor(r)
	accessorCache.Store(t, a)
	return a
}

func buildAccessor(r Row) *Accessor {
	a := &Accessor{
		Kind:      func(Row) string { return "" },
		Namespace: func(Row) string { return "" },
		Cluster:   func(Row) string { return "" },
	}
	if _, ok := r.(KindProvider); ok {
		a.Kind = func(r Row) string { return r.(KindProvider).RowKind() }
	}
	if _, ok := r.(NamespaceProvider); ok {
		a.Namespace = func(r Row) string { return r.(NamespaceProvider).RowNamespace() }
	}
	if _, ok := r.(ClusterProvider); ok {
		a.Cluster = func(r Row) string { return r.(ClusterProvider).RowCluster() }
	}
	if _, ok := r.(MapRow); ok {
		a.Kind = func(r Row) string { return r.(MapRow).Field("kind") }
		a.Namespace = func(r Row) string { return r.(MapRow).Field("namespace") }
		a.Cluster = func(r Row) string { return r.(MapRow).Field("cluster") }
	}
	return a
}

// RowKind returns the kind of a row via its resolved accessor.
func RowKind(r Row) string { return accessorFor(r).Kind(r) }

// RowNamespace returns the namespace of a row via its resolved accessor.
func RowNamespace(r Row) string { return accessorFor(r).Namespace(r) }

// RowCluster returns the cluster of a row via its resolved accessor.
func RowCluster(r Row) string { return accessorFor(r).Cluster(r) }

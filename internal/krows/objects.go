package krows

import (
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/duration"

	"github.com/luxury-yacht/kview/internal/grid"
)

// ObjectRow wraps one unstructured object for sources that do not go
// through server-side printing.
type ObjectRow struct {
	obj     *unstructured.Unstructured
	cluster string
}

func (r *ObjectRow) Key() string {
	if ns := r.obj.GetNamespace(); ns != "" {
		return ns + "/" + r.obj.GetName()
	}
	if n := r.obj.GetName(); n != "" {
		return n
	}
	return string(r.obj.GetUID())
}

func (r *ObjectRow) Object() *unstructured.Unstructured { return r.obj }
func (r *ObjectRow) RowKind() string                    { return r.obj.GetKind() }
func (r *ObjectRow) RowNamespace() string               { return r.obj.GetNamespace() }
func (r *ObjectRow) RowCluster() string                 { return r.cluster }

// ObjectList adapts an unstructured list into a grid.List.
type ObjectList struct {
	rows  []*ObjectRow
	index map[string]int
	now   func() time.Time
}

func NewObjectList(list *unstructured.UnstructuredList, cluster string) *ObjectList {
	l := &ObjectList{now: time.Now}
	if list == nil {
		return l
	}
	l.rows = make([]*ObjectRow, 0, len(list.Items))
	for i := range list.Items {
		l.rows = append(l.rows, &ObjectRow{obj: &list.Items[i], cluster: cluster})
	}
	l.reindex()
	return l
}

func (l *ObjectList) reindex() {
	l.index = make(map[string]int, len(l.rows))
	for i, r := range l.rows {
		l.index[r.Key()] = i
	}
}

func (l *ObjectList) Len() int { return len(l.rows) }

func (l *ObjectList) Lines(top, num int) []grid.Row {
	if num <= 0 || top >= len(l.rows) {
		return nil
	}
	if top < 0 {
		top = 0
	}
	end := top + num
	if end > len(l.rows) {
		end = len(l.rows)
	}
	out := make([]grid.Row, 0, end-top)
	for _, r := range l.rows[top:end] {
		out = append(out, r)
	}
	return out
}

func (l *ObjectList) Find(key string) (int, grid.Row, bool) {
	i, ok := l.index[key]
	if !ok {
		return -1, nil, false
	}
	return i, l.rows[i], true
}

// Columns is the built-in schema for plain object lists: name, namespace,
// kind badge and age.
func (l *ObjectList) Columns() []grid.Column {
	return []grid.Column{
		{
			Key: "name", Title: "Name", Role: grid.RoleName,
			Sortable: true, AutoWidth: true,
			Render: func(r grid.Row) string { return r.(*ObjectRow).obj.GetName() },
		},
		{
			Key: "namespace", Title: "Namespace",
			Sortable: true, AutoWidth: true,
			Render: func(r grid.Row) string { return r.(*ObjectRow).obj.GetNamespace() },
		},
		{
			Key: "kind", Title: "Kind", Role: grid.RoleKind, Badge: true,
			Sortable: true,
			Render:   func(r grid.Row) string { return r.(*ObjectRow).obj.GetKind() },
		},
		{
			Key: "age", Title: "Age",
			Render: func(r grid.Row) string { return l.age(r.(*ObjectRow)) },
		},
	}
}

func (l *ObjectList) age(r *ObjectRow) string {
	created := r.obj.GetCreationTimestamp()
	if created.IsZero() {
		return ""
	}
	return duration.HumanDuration(l.now().Sub(created.Time))
}

var (
	_ grid.List              = (*ObjectList)(nil)
	_ grid.Row               = (*ObjectRow)(nil)
	_ grid.KindProvider      = (*ObjectRow)(nil)
	_ grid.NamespaceProvider = (*ObjectRow)(nil)
	_ grid.ClusterProvider   = (*ObjectRow)(nil)
)

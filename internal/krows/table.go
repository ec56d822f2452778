// Package krows adapts Kubernetes API data to the grid's row model.
// Server-side printed tables (metav1.Table) keep the server's column
// schema; unstructured object lists get a small built-in schema. Both
// row shapes expose the identity fields the grid's accessors resolve.
package krows

import (
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/luxury-yacht/kview/internal/grid"
)

// TableRow is one server-printed row with the object identity extracted
// from the embedded partial object.
type TableRow struct {
	cells     []interface{}
	name      string
	namespace string
	uid       string
	target    schema.GroupVersionKind
	cluster   string
}

// Key is namespace/name when known, falling back to the UID. Both are
// stable across re-lists, which is what keeps focus pinned to the same
// object while rows churn.
func (r *TableRow) Key() string {
	if r.name != "" {
		if r.namespace != "" {
			return r.namespace + "/" + r.name
		}
		return r.name
	}
	return r.uid
}

func (r *TableRow) Name() string         { return r.name }
func (r *TableRow) RowKind() string      { return r.target.Kind }
func (r *TableRow) RowNamespace() string { return r.namespace }
func (r *TableRow) RowCluster() string   { return r.cluster }

// Cell returns the i-th printed cell as text, "" when out of range.
func (r *TableRow) Cell(i int) string {
	if i < 0 || i >= len(r.cells) || r.cells[i] == nil {
		return ""
	}
	if s, ok := r.cells[i].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", r.cells[i])
}

// TableList adapts a metav1.Table into a grid.List.
type TableList struct {
	target  schema.GroupVersionKind
	cluster string
	defs    []metav1.TableColumnDefinition
	rows    []*TableRow
	index   map[string]int
}

// NewTableList converts a server-side printed table. The target kind is
// what the table's rows represent; cluster may be "" outside multi-cluster
// setups.
func NewTableList(table *metav1.Table, target schema.GroupVersionKind, cluster string) (*TableList, error) {
	l := &TableList{target: target, cluster: cluster}
	if err := l.Reset(table); err != nil {
		return nil, err
	}
	return l, nil
}

// Reset replaces the rows from a fresh table, keeping the column schema
// from the first table that carried one (watches omit it on updates).
func (l *TableList) Reset(table *metav1.Table) error {
	if table == nil {
		return fmt.Errorf("krows: nil table")
	}
	if len(table.ColumnDefinitions) > 0 {
		l.defs = append([]metav1.TableColumnDefinition(nil), table.ColumnDefinitions...)
	}
	rows := make([]*TableRow, 0, len(table.Rows))
	for i := range table.Rows {
		row, err := convertRow(&table.Rows[i], l.target, l.cluster)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	l.rows = rows
	l.reindex()
	return nil
}

func (l *TableList) reindex() {
	l.index = make(map[string]int, len(l.rows))
	for i, r := range l.rows {
		l.index[r.Key()] = i
	}
}

func (l *TableList) Len() int { return len(l.rows) }

func (l *TableList) Lines(top, num int) []grid.Row {
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

func (l *TableList) Find(key string) (int, grid.Row, bool) {
	i, ok := l.index[key]
	if !ok {
		return -1, nil, false
	}
	return i, l.rows[i], true
}

// Columns maps the server's column schema onto grid columns. The name
// column (format "name") gets the name role; status-ish columns render as
// badges; every column auto-sizes to content and sorts.
func (l *TableList) Columns() []grid.Column {
	cols := make([]grid.Column, 0, len(l.defs))
	for i, d := range l.defs {
		i := i
		c := grid.Column{
			Key:       columnKey(d.Name),
			Title:     d.Name,
			Sortable:  true,
			AutoWidth: true,
			Render: func(r grid.Row) string {
				return r.(*TableRow).Cell(i)
			},
		}
		switch {
		case d.Format == "name" || strings.EqualFold(d.Name, "name"):
			c.Role = grid.RoleName
		case badgeColumn(d.Name):
			c.Role = grid.RoleKind
			c.Badge = true
		}
		cols = append(cols, c)
	}
	return cols
}

// DefaultHidden returns the visibility overrides for wide-output columns
// (priority > 0), hidden until the user opts in.
func (l *TableList) DefaultHidden() map[string]bool {
	out := make(map[string]bool)
	for _, d := range l.defs {
		if d.Priority > 0 {
			out[columnKey(d.Name)] = false
		}
	}
	return out
}

func columnKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func badgeColumn(name string) bool {
	switch strings.ToLower(name) {
	case "status", "ready", "kind", "phase":
		return true
	}
	return false
}

func convertRow(row *metav1.TableRow, target schema.GroupVersionKind, cluster string) (*TableRow, error) {
	out := &TableRow{
		cells:   append([]interface{}(nil), row.Cells...),
		target:  target,
		cluster: cluster,
	}
	var u unstructured.Unstructured
	switch {
	case row.Object.Object != nil:
		if obj, ok := row.Object.Object.(*unstructured.Unstructured); ok {
			u = *obj
		}
	case len(row.Object.Raw) > 0:
		if err := u.UnmarshalJSON(row.Object.Raw); err != nil {
			return nil, fmt.Errorf("krows: decode embedded object: %w", err)
		}
	}
	if u.Object != nil {
		out.name = u.GetName()
		out.namespace = u.GetNamespace()
		out.uid = string(u.GetUID())
	}
	if out.name == "" && out.uid == "" && len(out.cells) > 0 {
		// Servers may omit the embedded object; the first printed cell is
		// the name by convention.
		out.name = out.Cell(0)
	}
	return out, nil
}

var (
	_ grid.List              = (*TableList)(nil)
	_ grid.Row               = (*TableRow)(nil)
	_ grid.KindProvider      = (*TableRow)(nil)
	_ grid.NamespaceProvider = (*TableRow)(nil)
	_ grid.ClusterProvider   = (*TableRow)(nil)
)

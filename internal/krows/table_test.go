package krows

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/luxury-yacht/kview/internal/grid"
)

var podGVK = schema.GroupVersionKind{Version: "v1", Kind: "Pod"}

func podTable() *metav1.Table {
	return &metav1.Table{
		ColumnDefinitions: []metav1.TableColumnDefinition{
			{Name: "Name", Type: "string", Format: "name"},
			{Name: "Ready", Type: "string"},
			{Name: "Status", Type: "string"},
			{Name: "Restarts", Type: "integer"},
			{Name: "Age", Type: "string"},
			{Name: "IP", Type: "string", Priority: 1},
		},
		Rows: []metav1.TableRow{
			{
				Cells:  []interface{}{"web-0", "1/1", "Running", int64(0), "3d"},
				Object: runtime.RawExtension{Raw: []byte(`{"metadata":{"name":"web-0","namespace":"default","uid":"u1"}}`)},
			},
			{
				Cells:  []interface{}{"db-0", "0/1", "Pending", int64(2), "5m"},
				Object: runtime.RawExtension{Raw: []byte(`{"metadata":{"name":"db-0","namespace":"prod","uid":"u2"}}`)},
			},
		},
	}
}

func TestTableListAdaptsRows(t *testing.T) {
	l, err := NewTableList(podTable(), podGVK, "kind-kind")
	if err != nil {
		t.Fatalf("NewTableList: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}

	i, r, ok := l.Find("prod/db-0")
	if !ok || i != 1 {
		t.Fatalf("Find prod/db-0 = %d/%v", i, ok)
	}
	row := r.(*TableRow)
	if row.Name() != "db-0" || row.RowNamespace() != "prod" {
		t.Fatalf("row identity = %q/%q", row.Name(), row.RowNamespace())
	}
	if grid.RowKind(r) != "Pod" {
		t.Fatalf("RowKind = %q, want Pod", grid.RowKind(r))
	}
	if grid.RowCluster(r) != "kind-kind" {
		t.Fatalf("RowCluster = %q", grid.RowCluster(r))
	}

	rows := l.Lines(0, 10)
	if len(rows) != 2 || rows[0].Key() != "default/web-0" {
		t.Fatalf("Lines = %v", rows)
	}
	if _, _, ok := l.Find("missing"); ok {
		t.Fatalf("Find on an absent key must fail")
	}
}

func TestTableListColumns(t *testing.T) {
	l, err := NewTableList(podTable(), podGVK, "")
	if err != nil {
		t.Fatalf("NewTableList: %v", err)
	}
	cols := l.Columns()
	if len(cols) != 6 {
		t.Fatalf("columns = %d, want 6", len(cols))
	}
	if cols[0].Key != "name" || cols[0].Role != grid.RoleName {
		t.Fatalf("name column = %+v", cols[0])
	}
	if !cols[2].Badge || cols[2].Role != grid.RoleKind {
		t.Fatalf("status column must be a badge: %+v", cols[2])
	}
	if !cols[0].Sortable || !cols[0].AutoWidth {
		t.Fatalf("columns must sort and auto-size: %+v", cols[0])
	}

	_, r, _ := l.Find("default/web-0")
	if got := cols[2].Render(r); got != "Running" {
		t.Fatalf("status cell = %q, want Running", got)
	}
	if got := cols[3].Render(r); got != "0" {
		t.Fatalf("integer cell = %q, want 0", got)
	}

	hidden := l.DefaultHidden()
	if len(hidden) != 1 || hidden["ip"] != false {
		t.Fatalf("wide columns must default hidden: %v", hidden)
	}
}

func TestTableListReset(t *testing.T) {
	l, err := NewTableList(podTable(), podGVK, "")
	if err != nil {
		t.Fatalf("NewTableList: %v", err)
	}
	// Re-lists commonly omit column definitions; the schema must survive.
	if err := l.Reset(&metav1.Table{
		Rows: []metav1.TableRow{{
			Cells:  []interface{}{"web-0", "1/1", "Running", int64(1), "3d"},
			Object: runtime.RawExtension{Raw: []byte(`{"metadata":{"name":"web-0","namespace":"default","uid":"u1"}}`)},
		}},
	}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len after reset = %d, want 1", l.Len())
	}
	if got := len(l.Columns()); got != 6 {
		t.Fatalf("column schema lost on reset: %d", got)
	}
	if _, _, ok := l.Find("prod/db-0"); ok {
		t.Fatalf("removed row must leave the index")
	}
}

func TestTableRowKeyFallbacks(t *testing.T) {
	row, err := convertRow(&metav1.TableRow{
		Cells: []interface{}{"standalone"},
	}, podGVK, "")
	if err != nil {
		t.Fatalf("convertRow: %v", err)
	}
	// No embedded object: the first printed cell stands in for the name.
	if row.Key() != "standalone" {
		t.Fatalf("fallback key = %q", row.Key())
	}

	row, err = convertRow(&metav1.TableRow{
		Cells:  []interface{}{"node-1"},
		Object: runtime.RawExtension{Raw: []byte(`{"metadata":{"name":"node-1","uid":"u9"}}`)},
	}, podGVK, "")
	if err != nil {
		t.Fatalf("convertRow: %v", err)
	}
	// Cluster-scoped: no namespace prefix.
	if row.Key() != "node-1" {
		t.Fatalf("cluster-scoped key = %q", row.Key())
	}
}

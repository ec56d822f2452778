package krows

import (
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/luxury-yacht/kview/internal/grid"
)

func unstructuredPod(name, namespace string, created time.Time) unstructured.Unstructured {
	u := unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Pod",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
	}}
	u.SetCreationTimestamp(metav1.NewTime(created))
	return u
}

func TestObjectListColumns(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	list := &unstructured.UnstructuredList{Items: []unstructured.Unstructured{
		unstructuredPod("web-0", "default", at.Add(-90*time.Minute)),
		unstructuredPod("db-0", "prod", at.Add(-30*time.Second)),
	}}
	l := NewObjectList(list, "dev")
	l.now = func() time.Time { return at }

	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	_, r, ok := l.Find("default/web-0")
	if !ok {
		t.Fatalf("Find default/web-0 failed")
	}
	if grid.RowKind(r) != "Pod" || grid.RowNamespace(r) != "default" || grid.RowCluster(r) != "dev" {
		t.Fatalf("row identity = %q/%q/%q", grid.RowKind(r), grid.RowNamespace(r), grid.RowCluster(r))
	}

	cols := l.Columns()
	byKey := map[string]grid.Column{}
	for _, c := range cols {
		byKey[c.Key] = c
	}
	if byKey["name"].Role != grid.RoleName {
		t.Fatalf("name column role = %v", byKey["name"].Role)
	}
	if !byKey["kind"].Badge {
		t.Fatalf("kind column must be a badge")
	}
	if got := byKey["name"].Render(r); got != "web-0" {
		t.Fatalf("name cell = %q", got)
	}
	if got := byKey["age"].Render(r); got != "90m" {
		t.Fatalf("age cell = %q, want 90m", got)
	}
}

func TestObjectListEmpty(t *testing.T) {
	l := NewObjectList(nil, "")
	if l.Len() != 0 {
		t.Fatalf("nil list Len = %d", l.Len())
	}
	if rows := l.Lines(0, 5); rows != nil {
		t.Fatalf("Lines on empty list = %v", rows)
	}
	if _, _, ok := l.Find("x"); ok {
		t.Fatalf("Find on empty list must fail")
	}
}

package solr

import (
	"strings"
	"testing"
)

func TestRequestMultiValuedParams(t *testing.T) {
	req := NewRequest("select")
	req.AddParam("facet.field", "make")
	req.AddParam("facet.field", "category")

	qs := req.QueryString()

	want := "facet.field=make&facet.field=category"
	if qs != want {
		t.Errorf("query string = %q; want %q", qs, want)
	}

	if strings.Contains(qs, "%5B") == true || strings.Contains(qs, "[]") == true {
		t.Errorf("query string %q has bracket-array artifacts", qs)
	}
}

func TestRequestDropsNilAndEmpty(t *testing.T) {
	req := NewRequest("select")
	req.AddParam("q", "*:*")
	req.AddParam("fq", nil)
	req.AddParam("fl", "")

	if qs := req.QueryString(); qs != "q=%2A%3A%2A" {
		t.Errorf("query string = %q; want only q", qs)
	}
}

func TestRequestBoolRendering(t *testing.T) {
	req := NewRequest("select")
	req.AddParam("stats", true)
	req.AddParam("mlt.boost", false)

	if got := req.GetParam("stats"); got != "true" {
		t.Errorf("stats = %q; want literal true", got)
	}
	if got := req.GetParam("mlt.boost"); got != "false" {
		t.Errorf("mlt.boost = %q; want literal false", got)
	}
}

func TestRequestSetParamOverwrites(t *testing.T) {
	req := NewRequest("select")
	req.AddParam("rows", 16)
	req.SetParam("rows", 0)

	if got := req.GetParams("rows"); len(got) != 1 || got[0] != "0" {
		t.Errorf("rows = %v; want [0]", got)
	}
}

func TestRequestURI(t *testing.T) {
	req := NewRequest("select")
	req.AddParam("q", "*:*")
	req.AddParam("rows", 16)

	want := "select?q=%2A%3A%2A&rows=16"
	if got := req.URI(); got != want {
		t.Errorf("uri = %q; want %q", got, want)
	}
}

func TestRequestPreservesInsertionOrder(t *testing.T) {
	req := NewRequest("select")
	req.AddParam("q", "*:*")
	req.AddParam("start", 0)
	req.AddParam("rows", 16)
	req.AddParam("start", 5)

	qs := req.QueryString()

	if strings.Index(qs, "start=") > strings.Index(qs, "rows=") {
		t.Errorf("repeated key changed position: %q", qs)
	}
}

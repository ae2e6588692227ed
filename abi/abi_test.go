package abi

import "testing"

func TestAllDeclaresEverySymbol(t *testing.T) {
	want := []string{
		"rt_create_table", "rt_add_column", "rt_add_row",
		"rt_write_int", "rt_write_string", "rt_write_bool",
		"rt_get_int", "rt_get_string", "rt_table_select", "malloc",
	}
	fns := All()
	if len(fns) != len(want) {
		t.Fatalf("All() returned %d functions, want %d", len(fns), len(want))
	}
	for i, w := range want {
		if fns[i].Name != w {
			t.Errorf("All()[%d].Name = %q, want %q", i, fns[i].Name, w)
		}
	}
}

func TestTableSelectTakesClosure(t *testing.T) {
	if len(TableSelect.Params) != 2 {
		t.Fatalf("rt_table_select should take 2 params")
	}
	if TableSelect.Params[1] != "{ i8*, i8* }" {
		t.Errorf("rt_table_select predicate param = %v, want closure struct", TableSelect.Params[1])
	}
}

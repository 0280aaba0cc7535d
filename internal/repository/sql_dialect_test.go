package repository

import (
	"testing"
)

func TestBuildSearchConditionSQLite(t *testing.T) {
	condition, argCount := buildSearchCondition(nil, "name", " ", "art_no_or_gtin")
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "name LIKE ? OR art_no_or_gtin LIKE ?"
	if condition != want {
		t.Fatalf("condition mismatch, want %s got %s", want, condition)
	}
}

func TestBuildSearchConditionPostgres(t *testing.T) {
	condition, argCount := buildSearchConditionByDialect("postgres", "name")
	if argCount != 1 || condition != "name ILIKE ?" {
		t.Fatalf("unexpected postgres condition %q (%d)", condition, argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}

func TestPageOffset(t *testing.T) {
	if _, _, ok := pageOffset(3, 0); ok {
		t.Fatalf("page size 0 should disable paging")
	}
	limit, offset, ok := pageOffset(0, 20)
	if !ok || limit != 20 || offset != 0 {
		t.Fatalf("page below 1 should start at 0, got %d/%d", limit, offset)
	}
	limit, offset, _ = pageOffset(3, 25)
	if limit != 25 || offset != 50 {
		t.Fatalf("page 3 of 25 want 25/50 got %d/%d", limit, offset)
	}
}

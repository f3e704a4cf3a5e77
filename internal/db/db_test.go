package db

import (
	"context"
	"strings"
	"testing"
)

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://u:p@localhost:5432/db?pool_max_conns=many")
	if err == nil {
		t.Fatal("expected error for invalid pool_max_conns")
	}
	if !strings.Contains(err.Error(), "parse database url") {
		t.Errorf("unexpected error: %v", err)
	}
}

// Package storetest holds behavior every MessageStore must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fnproject/formserver/api/models"
)

// ReadFunc returns what the store under test currently holds.
type ReadFunc func() (string, error)

// Test runs the shared MessageStore suite against ms.
func Test(t *testing.T, ms models.MessageStore, read ReadFunc) {
	ctx := context.Background()

	check := func(t *testing.T, expected string) {
		t.Helper()
		got, err := read()
		if err != nil {
			t.Fatalf("Test read: unexpected error `%v`", err)
		}
		if got != expected {
			t.Fatalf("Test read: expected `%q`, got `%q`", expected, got)
		}
	}

	t.Run("put", func(t *testing.T) {
		if err := ms.Put(ctx, "hello"); err != nil {
			t.Fatalf("Test Put(ctx, hello): unexpected error `%v`", err)
		}
		check(t, "hello")
	})

	t.Run("last-write-wins", func(t *testing.T) {
		if err := ms.Put(ctx, "hello"); err != nil {
			t.Fatal(err)
		}
		if err := ms.Put(ctx, "world"); err != nil {
			t.Fatal(err)
		}
		check(t, "world")
	})

	t.Run("shorter-value-truncates", func(t *testing.T) {
		if err := ms.Put(ctx, "a much longer message than the next one"); err != nil {
			t.Fatal(err)
		}
		if err := ms.Put(ctx, "short"); err != nil {
			t.Fatal(err)
		}
		check(t, "short")
	})

	t.Run("empty-value", func(t *testing.T) {
		if err := ms.Put(ctx, ""); err != nil {
			t.Fatalf("Test Put(ctx, \"\"): unexpected error `%v`", err)
		}
		check(t, "")
	})

	t.Run("concurrent-puts", func(t *testing.T) {
		const n = 16
		values := make(map[string]bool, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			v := fmt.Sprintf("value-%02d", i)
			values[v] = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := ms.Put(ctx, v); err != nil {
					t.Errorf("Test concurrent Put(ctx, %s): unexpected error `%v`", v, err)
				}
			}()
		}
		wg.Wait()

		got, err := read()
		if err != nil {
			t.Fatal(err)
		}
		// one whole value wins, never a mix of several
		if !values[got] {
			t.Fatalf("Test concurrent Put: stored value `%q` is not one of the written values", got)
		}
	})

	t.Run("cancelled-context", func(t *testing.T) {
		if err := ms.Put(ctx, "kept"); err != nil {
			t.Fatal(err)
		}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := ms.Put(cctx, "dropped"); err == nil {
			t.Fatal("Test Put with cancelled context: expected error")
		}
		check(t, "kept")
	})
}

package memstore

import (
	"fmt"
	"sync"
	"testing"

	"letterchat/internal/port"
)

func item(id string, vector []float32) port.VectorItem {
	return port.VectorItem{
		ID:       id,
		Vector:   vector,
		Metadata: map[string]string{port.MetaText: "text for " + id, port.MetaSource: id + ".txt"},
	}
}

func TestSearchOrdering(t *testing.T) {
	s := NewMemoryStore(2)
	err := s.Upsert([]port.VectorItem{
		item("far", []float32{0, 1}),
		item("near", []float32{1, 0}),
		item("mid", []float32{1, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := s.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 0; i < len(results)-1; i++ {
		if results[i].Score < results[i+1].Score {
			t.Errorf("results not in descending score order at %d", i)
		}
	}
	if results[0].ID != "near" {
		t.Errorf("top result is %s, want near", results[0].ID)
	}
}

func TestSearchTiesBrokenByInsertionOrder(t *testing.T) {
	s := NewMemoryStore(2)
	// Identical vectors score identically; insertion order decides.
	for _, id := range []string{"first", "second", "third"} {
		if err := s.Upsert([]port.VectorItem{item(id, []float32{1, 1})}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.Search([]float32{1, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, r := range results {
		if r.ID != want[i] {
			t.Errorf("result %d is %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestSearchKLargerThanStore(t *testing.T) {
	s := NewMemoryStore(2)
	s.Upsert([]port.VectorItem{item("only", []float32{1, 0})})

	results, err := s.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	s := NewMemoryStore(2)
	s.Upsert([]port.VectorItem{item("a", []float32{1, 0})})
	s.Upsert([]port.VectorItem{item("a", []float32{0, 1})})

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("got %d entries after re-upsert, want 1", n)
	}

	results, _ := s.Search([]float32{0, 1}, 1)
	if results[0].Score < 0.99 {
		t.Errorf("entry not replaced: score %v", results[0].Score)
	}
}

func TestDimensionMismatch(t *testing.T) {
	s := NewMemoryStore(3)
	if err := s.Upsert([]port.VectorItem{item("a", []float32{1, 0})}); err == nil {
		t.Error("expected upsert dimension error")
	}
	if _, err := s.Search([]float32{1, 0}, 1); err == nil {
		t.Error("expected search dimension error")
	}
}

func TestUpsertRejectsWholeBatch(t *testing.T) {
	s := NewMemoryStore(2)
	err := s.Upsert([]port.VectorItem{
		item("good", []float32{1, 0}),
		item("bad", []float32{1, 0, 0}),
	})
	if err == nil {
		t.Fatal("expected dimension error")
	}
	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("failed batch partially applied: count = %d, want 0", count)
	}
}

func TestConcurrentUpsertAndSearch(t *testing.T) {
	s := NewMemoryStore(2)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("w%d-%d", i, j)
				s.Upsert([]port.VectorItem{item(id, []float32{float32(i), float32(j)})})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Search([]float32{1, 1}, 5)
			}
		}()
	}
	wg.Wait()

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 8*50 {
		t.Errorf("got %d entries, want %d", n, 8*50)
	}
}

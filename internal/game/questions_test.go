package game

import "testing"

func testCatalog() *QuestionCatalog {
	return NewQuestionCatalog([]Question{
		{ID: "q3", Text: "third", Level: 2, SortOrder: 1},
		{ID: "q1", Text: "first", Level: 1, SortOrder: 1},
		{ID: "q4", Text: "fourth", Level: 2, SortOrder: 2},
		{ID: "q2", Text: "second", Level: 1, SortOrder: 2},
	})
}

func TestQuestionCatalogFirst(t *testing.T) {
	catalog := testCatalog()
	first := catalog.First()
	if first == nil || first.ID != "q1" {
		t.Fatalf("expected first question q1, got %+v", first)
	}
	empty := NewQuestionCatalog(nil)
	if empty.First() != nil {
		t.Fatal("expected nil first for empty catalog")
	}
}

func TestQuestionCatalogNextWithinLevel(t *testing.T) {
	catalog := testCatalog()
	next := catalog.Next("q1")
	if next == nil || next.ID != "q2" {
		t.Fatalf("expected q2 after q1, got %+v", next)
	}
}

func TestQuestionCatalogNextCrossesLevelBoundary(t *testing.T) {
	catalog := testCatalog()
	next := catalog.Next("q2")
	if next == nil || next.ID != "q3" {
		t.Fatalf("expected q3 after q2, got %+v", next)
	}
	if next.Level != 2 {
		t.Fatalf("expected level 2, got %d", next.Level)
	}
}

func TestQuestionCatalogNextAtEnd(t *testing.T) {
	catalog := testCatalog()
	if next := catalog.Next("q4"); next != nil {
		t.Fatalf("expected nil after last question, got %+v", next)
	}
}

func TestQuestionCatalogNextUnknownID(t *testing.T) {
	catalog := testCatalog()
	if next := catalog.Next("nope"); next != nil {
		t.Fatalf("expected nil for unknown id, got %+v", next)
	}
}

// Every non-last element must have a well-defined successor, whatever the
// tier layout.
func TestQuestionCatalogNextTotalOrder(t *testing.T) {
	catalog := testCatalog()
	current := catalog.First()
	var walked []string
	for current != nil {
		walked = append(walked, current.ID)
		current = catalog.Next(current.ID)
	}
	if len(walked) != catalog.Len() {
		t.Fatalf("walk visited %d of %d questions", len(walked), catalog.Len())
	}
	want := []string{"q1", "q2", "q3", "q4"}
	for i, id := range want {
		if walked[i] != id {
			t.Fatalf("walk[%d] = %s, want %s", i, walked[i], id)
		}
	}
}

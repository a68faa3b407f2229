package controller

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type item struct {
	Title string
}

func titles(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func byTitle(a, b item) bool { return a.Title < b.Title }

func TestListController_SortAndToggle(t *testing.T) {
	c := NewList(func(ctx context.Context) ([]item, error) {
		return []item{{"banana"}, {"apple"}, {"cherry"}}, nil
	})

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	c.SortBy(byTitle)

	want := []string{"apple", "banana", "cherry"}
	if got := titles(c.Items()); !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v; want %v", got, want)
	}

	c.Toggle()
	wantDesc := []string{"cherry", "banana", "apple"}
	if got := titles(c.Items()); !reflect.DeepEqual(got, wantDesc) {
		t.Errorf("toggled = %v; want exact reverse %v", got, wantDesc)
	}

	c.Toggle()
	if got := titles(c.Items()); !reflect.DeepEqual(got, want) {
		t.Errorf("toggled twice = %v; want original ascending order %v", got, want)
	}
}

func TestListController_LoadErrorKeepsItems(t *testing.T) {
	fail := false
	c := NewList(func(ctx context.Context) ([]item, error) {
		if fail {
			return nil, errors.New("backend unreachable")
		}
		return []item{{"a"}}, nil
	})

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Err() != "" {
		t.Errorf("Err after success = %q; want empty", c.Err())
	}

	fail = true
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("Load should fail")
	}
	if c.Err() != "backend unreachable" {
		t.Errorf("Err = %q; want the fetch error message", c.Err())
	}
	if len(c.Items()) != 1 {
		t.Errorf("items dropped on failed reload; want previous items kept")
	}

	// A later successful load clears the error.
	fail = false
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Err() != "" {
		t.Errorf("Err after recovery = %q; want empty", c.Err())
	}
}

func TestListController_CanceledContextDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewList(func(ctx context.Context) ([]item, error) {
		// Simulate the response arriving after the screen is gone.
		cancel()
		return []item{{"stale"}}, nil
	})

	if err := c.Load(ctx); err == nil {
		t.Fatal("Load with canceled context should return the context error")
	}
	if len(c.Items()) != 0 {
		t.Errorf("stale result applied after cancellation: %v", c.Items())
	}
	if c.Err() != "" {
		t.Errorf("Err = %q; canceled loads must not set the error state", c.Err())
	}
}

func TestFormController_DirtyAndSave(t *testing.T) {
	saved := item{}
	f := NewForm(
		func(ctx context.Context) (item, error) { return item{Title: "original"}, nil },
		func(ctx context.Context, v item) (item, error) {
			saved = v
			return v, nil
		},
	)

	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Dirty() {
		t.Error("form dirty right after load")
	}

	f.Edit(item{Title: "edited"})
	if !f.Dirty() {
		t.Error("form clean after edit")
	}

	if err := f.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Title != "edited" {
		t.Errorf("submitted %q; want %q", saved.Title, "edited")
	}
	if f.Dirty() {
		t.Error("form dirty after successful save")
	}
}

func TestFormController_SaveErrorKeepsBuffer(t *testing.T) {
	f := NewForm(
		func(ctx context.Context) (item, error) { return item{Title: "original"}, nil },
		func(ctx context.Context, v item) (item, error) {
			return item{}, errors.New("validation failed")
		},
	)

	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	f.Edit(item{Title: "edited"})

	if err := f.Save(context.Background()); err == nil {
		t.Fatal("Save should fail")
	}
	if f.Buffer().Title != "edited" {
		t.Errorf("buffer lost on failed save: %q", f.Buffer().Title)
	}
	if !f.Dirty() {
		t.Error("form should stay dirty after failed save")
	}
	if f.Err() != "validation failed" {
		t.Errorf("Err = %q; want submit error message", f.Err())
	}
}

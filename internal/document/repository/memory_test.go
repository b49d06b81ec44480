package repository

import (
	"context"
	"testing"

	"github.com/gogotex/docserve/internal/document"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	d := &document.Document{Title: "Report", Filename: "report.pdf", FileKey: "documents/report.pdf", ContentType: "application/pdf"}
	id, err := r.Create(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := r.Find(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(d, got, cmpopts.IgnoreFields(document.Document{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Fatalf("Find() mismatch (-want +got):\n%s", diff)
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Find(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, id), ErrNotFound)
}

func TestMemoryRepoFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	id, err := r.Create(ctx, &document.Document{Filename: "a.txt"})
	require.NoError(t, err)

	got, err := r.Find(ctx, id)
	require.NoError(t, err)
	got.Filename = "mutated.txt"

	again, err := r.Find(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "a.txt", again.Filename)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reverse-market/internal/testutil"
)

func TestCategoryTreeAndCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.categories.CreateCategory(ctx, CategoryInput{Name: " Electronics ", SortOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, "Electronics", c.Name)

	s1, err := e.categories.CreateSubCategory1(ctx, CategoryInput{ParentID: c.ID, Name: "Phones"})
	require.NoError(t, err)
	_, err = e.categories.CreateSubCategory2(ctx, CategoryInput{ParentID: s1.ID, Name: "Android"})
	require.NoError(t, err)

	_, err = e.categories.CreateSubCategory1(ctx, CategoryInput{ParentID: 999, Name: "Orphan"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = e.categories.CreateCategory(ctx, CategoryInput{Name: ""})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	hidden := testutil.CategoryTree(t, e.db, "Hidden")
	require.NoError(t, e.db.Model(hidden.Category).Update("is_active", false).Error)

	tree, err := e.categories.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].SubCategories, 1)
	require.Len(t, tree[0].SubCategories[0].SubCategories, 1)
	assert.Equal(t, "Android", tree[0].SubCategories[0].SubCategories[0].Name)
}

func TestValidatePath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CategoryTree(t, e.db, "A")
	b := testutil.CategoryTree(t, e.db, "B")

	assert.NoError(t, e.categories.ValidatePath(ctx, a.Category.ID, nil, nil))
	assert.NoError(t, e.categories.ValidatePath(ctx, a.Category.ID, &a.Sub1.ID, &a.Sub2.ID))
	assert.NoError(t, e.categories.ValidatePath(ctx, a.Category.ID, nil, &a.Sub2.ID))

	assert.ErrorIs(t, e.categories.ValidatePath(ctx, 0, nil, nil), ErrInvalidCategoryPath)
	assert.ErrorIs(t, e.categories.ValidatePath(ctx, 999, nil, nil), ErrInvalidCategoryPath)
	assert.ErrorIs(t, e.categories.ValidatePath(ctx, a.Category.ID, &b.Sub1.ID, nil), ErrInvalidCategoryPath)
	assert.ErrorIs(t, e.categories.ValidatePath(ctx, a.Category.ID, &a.Sub1.ID, &b.Sub2.ID), ErrInvalidCategoryPath)
	assert.ErrorIs(t, e.categories.ValidatePath(ctx, a.Category.ID, nil, &b.Sub2.ID), ErrInvalidCategoryPath)
}

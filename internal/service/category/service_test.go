package category

import (
	"context"
	"testing"

	"storefront/internal/domain"
)

func TestList_SourceFunc(t *testing.T) {
	svc := New(SourceFunc(func(context.Context) ([]domain.Category, error) {
		return []domain.Category{{Key: "bags", Name: "Bags"}}, nil
	}))
	cats, err := svc.List(context.Background())
	if err != nil || len(cats) != 1 || cats[0].Key != "bags" {
		t.Fatalf("unexpected categories %+v err=%v", cats, err)
	}
}

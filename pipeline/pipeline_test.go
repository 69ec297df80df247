package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/bookrec/core"
)

func appendNode(id int64) Node {
	return NodeFunc{
		NodeName: "append",
		NodeKind: KindRecall,
		Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
			return append(items, core.NewItem(id)), nil
		},
	}
}

func TestPipeline_RunsNodesInOrder(t *testing.T) {
	p := &Pipeline{Name: "test", Nodes: []Node{appendNode(1), appendNode(2), appendNode(3)}}
	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	for i, it := range items {
		if it.ID != int64(i+1) {
			t.Errorf("items[%d].ID = %d, want %d", i, it.ID, i+1)
		}
	}
}

func TestPipeline_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := &Pipeline{Nodes: []Node{
		NodeFunc{NodeName: "fail", NodeKind: KindFilter, Fn: func(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
			return nil, boom
		}},
		NodeFunc{NodeName: "after", NodeKind: KindReRank, Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
			called = true
			return items, nil
		}},
	}}

	_, err := p.Run(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped boom", err)
	}
	if called {
		t.Error("node after the failing one was executed")
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{appendNode(1)}}
	if _, err := p.Run(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

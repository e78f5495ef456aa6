package behaviortree

import (
	"math/rand/v2"
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
)

func TestParseFile_NestsByIndentation(t *testing.T) {
	src := "Selector\n  Sequence\n    HasTarget()\n    Shoot()\n  FindEnemy()\n"
	forest, remainder := ParseFile(src)
	if remainder != "" {
		t.Fatalf("expected a fully parsed source, got remainder %q", remainder)
	}
	if len(forest) != 1 || forest[0].Name != "Selector" {
		t.Fatalf("expected a single Selector root, got %+v", forest)
	}
	if len(forest[0].Children) != 2 {
		t.Fatalf("expected two children of the root Selector, got %d", len(forest[0].Children))
	}
	if forest[0].Children[0].Name != "Sequence" || len(forest[0].Children[0].Children) != 2 {
		t.Fatalf("expected the Sequence child to carry two of its own children, got %+v", forest[0].Children[0])
	}
}

func TestParseFile_MalformedLineLeavesRemainder(t *testing.T) {
	src := "Selector\n  NotClosed(a=1\n"
	forest, remainder := ParseFile(src)
	if remainder == "" {
		t.Fatalf("expected a non-empty remainder for malformed source")
	}
	if len(forest) != 0 {
		t.Fatalf("expected no forest to be returned alongside a remainder, got %+v", forest)
	}
}

func TestTimeout_RunsThenSucceedsWithoutTickingNextChild(t *testing.T) {
	bb := Blackboard{}
	ticked := 0
	printNode := bt.New(func([]bt.Node) (bt.Status, error) {
		ticked++
		return bt.Success, nil
	})
	seq := Sequence(Timeout(bb, Ports{}, 3), printNode)

	tick, children := seq()
	for i := 0; i < 3; i++ {
		status, err := tick(children)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != bt.Running {
			t.Fatalf("expected Running on tick %d, got %v", i+1, status)
		}
		if ticked != 0 {
			t.Fatalf("expected Print never ticked before Timeout succeeds, ticked=%d", ticked)
		}
	}

	status, err := tick(children)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != bt.Success {
		t.Fatalf("expected Success on the 4th tick, got %v", status)
	}
	if ticked != 1 {
		t.Fatalf("expected Print ticked exactly once, got %d", ticked)
	}
}

func TestBuild_RejectsAgentOnlyNodeForSpawner(t *testing.T) {
	forest, remainder := ParseFile("Shoot()\n")
	if remainder != "" {
		t.Fatalf("unexpected remainder: %q", remainder)
	}
	br := &Bridge{
		Callback: func(Command) (bt.Status, interface{}) { return bt.Success, nil },
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
	if _, err := Build(forest[0], br, Blackboard{}, func(string) {}, false); err == nil {
		t.Fatalf("expected Shoot to be rejected for a spawner tree")
	}
}

func TestBuild_DispatchesCallbackForDomainNode(t *testing.T) {
	forest, _ := ParseFile("HasTarget()\n")
	called := false
	br := &Bridge{
		Callback: func(cmd Command) (bt.Status, interface{}) {
			called = true
			if cmd.Tag != CmdHasTarget {
				t.Fatalf("expected CmdHasTarget, got %v", cmd.Tag)
			}
			return bt.Success, nil
		},
		Rand: rand.New(rand.NewPCG(1, 2)),
	}
	node, err := Build(forest[0], br, Blackboard{}, func(string) {}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tick, children := node()
	status, err := tick(children)
	if err != nil || status != bt.Success {
		t.Fatalf("expected Success, got %v %v", status, err)
	}
	if !called {
		t.Fatalf("expected the callback to be invoked")
	}
}

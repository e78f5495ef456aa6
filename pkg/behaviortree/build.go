package behaviortree

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

// portsFromArgs treats every parsed argument as a port remap: an arg
// `output=my_slot` means the node's "output" port reads/writes blackboard
// key "my_slot" instead of the literal string "output". Numeric/flag
// arguments (time=3, min=0) are also consumed directly by the node
// constructors that need a literal rather than a port, so a given key may
// be read either way depending on the node.
func portsFromArgs(n *ParsedNode) Ports {
	p := make(Ports, len(n.Args))
	for k, v := range n.Args {
		p[k] = v
	}
	return p
}

// Build compiles one parsed node (and its children) into a bt.Node, wiring
// every domain/condition leaf against br and bb. agentNodes selects
// between the full agent node set and the smaller spawner set (SPEC_FULL
// supplemented feature #2): spawners never drive, path-find, or shoot.
func Build(n *ParsedNode, br *Bridge, bb Blackboard, logf func(string), agentNodes bool) (bt.Node, error) {
	ports := portsFromArgs(n)

	switch n.Name {
	case "Sequence", "Selector":
		children := make([]bt.Node, 0, len(n.Children))
		for _, c := range n.Children {
			child, err := Build(c, br, bb, logf, agentNodes)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if n.Name == "Sequence" {
			return Sequence(children...), nil
		}
		return Selector(children...), nil

	case "StringEq":
		return StringEq(bb, ports), nil
	case "Gt":
		return Gt(bb, ports), nil
	case "Ge":
		return Ge(bb, ports), nil
	case "Timeout":
		return Timeout(bb, ports, n.ArgInt("time", 0)), nil
	case "Randomize":
		return Randomize(br, bb, ports, n.ArgFloat("min", 0), n.ArgFloat("max", 1)), nil
	case "SetBool":
		return SetBool(bb, ports, n.ArgString("value", "") == "true"), nil
	case "Print":
		return Print(bb, ports, n.ArgString("arg0", ""), n.ArgString("arg1", ""), logf), nil
	}

	if !agentNodes {
		switch n.Name {
		case "Drive", "MoveTo", "Avoidance", "ClearAvoidance", "FollowPath",
			"FindPath", "FindEnemy", "Shoot", "FaceToTarget", "HasTarget",
			"HasPath", "IsTargetVisible", "IsArrivedGoal", "PathNextNode",
			"PredictForward", "NewPosition":
			return nil, fmt.Errorf("behaviortree: node %q is not valid on a spawner", n.Name)
		}
	}

	switch n.Name {
	case "HasTarget":
		return HasTarget(br), nil
	case "HasPath":
		return HasPath(br), nil
	case "IsTargetVisible":
		return IsTargetVisible(br), nil
	case "IsArrivedGoal":
		return IsArrivedGoal(br), nil
	case "FindEnemy":
		return FindEnemy(br), nil
	case "FindPath":
		return FindPath(br), nil
	case "FollowPath":
		return FollowPath(br, bb, ports), nil
	case "Drive":
		return Drive(br, n.ArgString("direction", "forward")), nil
	case "MoveTo":
		return MoveTo(br, bb, ports), nil
	case "Shoot":
		return Shoot(br), nil
	case "Avoidance":
		return Avoidance(br, bb, ports), nil
	case "ClearAvoidance":
		return ClearAvoidance(br), nil
	case "PathNextNode":
		return PathNextNode(br, bb, ports), nil
	case "PredictForward":
		return PredictForward(br, bb, ports), nil
	case "NewPosition":
		return NewPosition(bb, ports), nil
	case "FaceToTarget":
		return FaceToTarget(br), nil
	case "SpawnFighter":
		return SpawnFighter(br), nil
	case "SpawnWorker":
		return SpawnWorker(br), nil
	case "GetResource":
		return GetResource(br, bb, ports), nil
	}

	return nil, fmt.Errorf("behaviortree: unknown node %q", n.Name)
}

// BuildForest compiles every root of forest, returning one bt.Node per
// root. A tree source normally has exactly one root.
func BuildForest(forest Forest, br *Bridge, bb Blackboard, logf func(string), agentNodes bool) ([]bt.Node, error) {
	roots := make([]bt.Node, 0, len(forest))
	for _, root := range forest {
		node, err := Build(root, br, bb, logf, agentNodes)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	return roots, nil
}

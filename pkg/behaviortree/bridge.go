// Package behaviortree is the bridge between a behavior-tree source file
// and the engine: it registers the node inventory of spec §4.7 against
// github.com/joeycumines/go-behaviortree and dispatches every domain leaf
// through a single BehaviorCallback, exactly as spec §9 describes ("the BT
// library talks to the engine via a single typed callback").
package behaviortree

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

	bt "github.com/joeycumines/go-behaviortree"
)

// Blackboard holds the named values ports read and write for one entity.
// The entity owns it and it persists across ticks (Timeout keeps its
// counter here).
type Blackboard map[string]interface{}

// Ports maps a node's logical port name ("value", "output", "a", ...) to
// the blackboard key actually used, so two instances of the same node type
// in one tree can address different blackboard slots. A port absent from
// Ports falls back to using its own name as the key.
type Ports map[string]string

func (p Ports) key(port string) string {
	if k, ok := p[port]; ok {
		return k
	}
	return port
}

func get(bb Blackboard, ports Ports, port string) (interface{}, bool) {
	v, ok := bb[ports.key(port)]
	return v, ok
}

func set(bb Blackboard, ports Ports, port string, v interface{}) {
	bb[ports.key(port)] = v
}

func getFloat(bb Blackboard, ports Ports, port string) (float64, bool) {
	v, ok := get(bb, ports, port)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func getString(bb Blackboard, ports Ports, port string) (string, bool) {
	v, ok := get(bb, ports, port)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// BehaviorCallback dispatches one domain Command for the entity captured by
// the tick's closure, returning the tick's resulting status and an
// optional payload (consumed by nodes with an output port, e.g.
// PathNextNode). A nil payload with Success is valid when the node has no
// output.
type BehaviorCallback func(cmd Command) (bt.Status, interface{})

// Bridge builds registered bt.Node leaves backed by callback and bb.
// One Bridge is constructed per entity each time its tree is compiled (it
// closes over that entity's state through callback).
type Bridge struct {
	Callback BehaviorCallback
	Rand     *rand.Rand
}

func leaf(tick bt.Tick) bt.Node {
	return bt.New(tick)
}

// --- Condition / logic nodes (spec §4.7) ---

// StringEq succeeds when the blackboard values at ports "a" and "b" are
// equal strings.
func StringEq(bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		a, _ := getString(bb, ports, "a")
		b, _ := getString(bb, ports, "b")
		if a == b {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

// Gt succeeds when the blackboard value at port "a" is strictly greater
// than the value at port "b".
func Gt(bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		a, _ := getFloat(bb, ports, "a")
		b, _ := getFloat(bb, ports, "b")
		if a > b {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

// Ge succeeds when the blackboard value at port "a" is greater than or
// equal to the value at port "b".
func Ge(bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		a, _ := getFloat(bb, ports, "a")
		b, _ := getFloat(bb, ports, "b")
		if a >= b {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

// HasTarget succeeds when the entity's Target is set (dispatched so it can
// read entity state the blackboard doesn't mirror).
func HasTarget(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdHasTarget})
		return status, nil
	})
}

// HasPath succeeds when the entity currently holds a non-empty quadtree A*
// path (set by FindPath).
func HasPath(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdHasPath})
		return status, nil
	})
}

// IsTargetVisible succeeds when the entity's current target is within its
// sight radius and in line of sight.
func IsTargetVisible(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdIsTargetVisible})
		return status, nil
	})
}

// IsArrivedGoal succeeds when the entity has reached its current Goal.
func IsArrivedGoal(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdIsArrivedGoal})
		return status, nil
	})
}

// Timeout yields Running for `ticks` ticks, then Success, never advancing
// its counter once expired. The counter lives under ports["_elapsed"] (an
// internal blackboard slot) so repeated ticks of the same node instance in
// the same tree accumulate correctly.
func Timeout(bb Blackboard, ports Ports, ticks int) bt.Node {
	counterKey := ports.key("_elapsed")
	return leaf(func([]bt.Node) (bt.Status, error) {
		elapsed, _ := bb[counterKey].(int)
		if elapsed >= ticks {
			return bt.Success, nil
		}
		bb[counterKey] = elapsed + 1
		return bt.Running, nil
	})
}

// Randomize writes a uniform value in [min,max) to the "value" output port
// and succeeds.
func Randomize(br *Bridge, bb Blackboard, ports Ports, min, max float64) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		v := min + br.Rand.Float64()*(max-min)
		set(bb, ports, "value", v)
		return bt.Success, nil
	})
}

// SetBool copies the literal value to the "output" port and succeeds.
func SetBool(bb Blackboard, ports Ports, value bool) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		set(bb, ports, "output", value)
		return bt.Success, nil
	})
}

// Print writes a formatted diagnostic line via logf (the caller's logger
// sink) using the blackboard value at "input" plus two literal args, and
// always succeeds.
func Print(bb Blackboard, ports Ports, arg0, arg1 string, logf func(string)) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		input, _ := get(bb, ports, "input")
		logf(fmt.Sprintf("%v %s %s", input, arg0, arg1))
		return bt.Success, nil
	})
}

// --- Domain nodes (spec §4.7) ---

// FindEnemy asks the engine to locate and record a visible enemy as the
// entity's Target.
func FindEnemy(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdFindEnemy})
		return status, nil
	})
}

// FindPath asks the engine to run Quadtree A* toward the entity's current
// Target (recorded as its Goal), storing the result on the entity.
func FindPath(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdFindPath})
		return status, nil
	})
}

// FollowPath drives the entity one step along its stored path, writing
// whether it has arrived to the "arrived" output port. Running until
// arrival.
func FollowPath(br *Bridge, bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, payload := br.Callback(Command{Tag: CmdFollowPath})
		if status == bt.Success {
			set(bb, ports, "arrived", payload)
		}
		return status, nil
	})
}

// Drive commits a forward or backward drive command for one tick.
func Drive(br *Bridge, direction string) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdDrive, Backward: direction == "backward"})
		return status, nil
	})
}

// MoveTo drives the entity toward the position read from the "pos" port.
func MoveTo(br *Bridge, bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		pos, ok := get(bb, ports, "pos")
		if !ok {
			return bt.Failure, nil
		}
		v, ok := pos.(geometry.Vector2D)
		if !ok {
			return bt.Failure, nil
		}
		status, _ := br.Callback(Command{Tag: CmdMoveTo, Pos: v})
		return status, nil
	})
}

// Shoot fires at the entity's current target.
func Shoot(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdShoot})
		return status, nil
	})
}

// Avoidance runs one RRT expansion step toward the position read from the
// "goal" port, driving backward if the "back" port is true. Succeeds once
// a path has been found.
func Avoidance(br *Bridge, bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		goal, ok := get(bb, ports, "goal")
		if !ok {
			return bt.Failure, nil
		}
		v, ok := goal.(geometry.Vector2D)
		if !ok {
			return bt.Failure, nil
		}
		back, _ := get(bb, ports, "back")
		backward, _ := back.(bool)
		status, _ := br.Callback(Command{Tag: CmdAvoidance, Pos: v, Backward: backward})
		return status, nil
	})
}

// ClearAvoidance discards the entity's RRT search state.
func ClearAvoidance(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdClearAvoidance})
		return status, nil
	})
}

// PathNextNode writes the next path waypoint to the "output" port.
func PathNextNode(br *Bridge, bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, payload := br.Callback(Command{Tag: CmdPathNextNode})
		if status == bt.Success {
			set(bb, ports, "output", payload)
		}
		return status, nil
	})
}

// PredictForward writes the entity's position projected `distance` units
// along its current heading to the "output" port.
func PredictForward(br *Bridge, bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		distance, _ := getFloat(bb, ports, "distance")
		status, payload := br.Callback(Command{Tag: CmdPredictForward, Distance: distance})
		if status == bt.Success {
			set(bb, ports, "output", payload)
		}
		return status, nil
	})
}

// NewPosition writes the position formed from the "x" and "y" input ports
// to the "output" port. Pure: it needs no engine callback.
func NewPosition(bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		x, _ := getFloat(bb, ports, "x")
		y, _ := getFloat(bb, ports, "y")
		set(bb, ports, "output", geometry.Vector2D{X: x, Y: y})
		return bt.Success, nil
	})
}

// FaceToTarget rotates the entity toward its current Target, one step per
// tick, until oriented.
func FaceToTarget(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdFaceToTarget})
		return status, nil
	})
}

// SpawnFighter requests a Fighter from the entity's spawner.
func SpawnFighter(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdSpawnFighter})
		return status, nil
	})
}

// SpawnWorker requests a Worker from the entity's spawner.
func SpawnWorker(br *Bridge) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, _ := br.Callback(Command{Tag: CmdSpawnWorker})
		return status, nil
	})
}

// GetResource writes the entity's current resource count to the "output"
// port.
func GetResource(br *Bridge, bb Blackboard, ports Ports) bt.Node {
	return leaf(func([]bt.Node) (bt.Status, error) {
		status, payload := br.Callback(Command{Tag: CmdGetResource})
		if status == bt.Success {
			set(bb, ports, "output", payload)
		}
		return status, nil
	})
}

// --- Composite helpers, built on the library's primitives ---

// Sequence succeeds only once every child has succeeded this pass,
// stopping (and returning the child's status) on the first non-Success.
func Sequence(children ...bt.Node) bt.Node {
	return bt.New(bt.Sequence, children...)
}

// Selector stops on the first child that does not fail and returns its
// status (Success or Running); it fails only if every child fails.
func Selector(children ...bt.Node) bt.Node {
	return bt.New(bt.Selector, children...)
}

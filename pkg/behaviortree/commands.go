package behaviortree

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// CommandTag discriminates the closed tagged union of domain commands a
// behavior-tree leaf can send to the engine in one tick (spec §9: "model
// commands as a closed tagged union").
type CommandTag int

const (
	CmdFindEnemy CommandTag = iota
	CmdFindPath
	CmdFollowPath
	CmdDrive
	CmdMoveTo
	CmdShoot
	CmdAvoidance
	CmdClearAvoidance
	CmdPathNextNode
	CmdPredictForward
	CmdFaceToTarget
	CmdSpawnFighter
	CmdSpawnWorker
	CmdGetResource
	CmdHasTarget
	CmdHasPath
	CmdIsTargetVisible
	CmdIsArrivedGoal
)

// Command is the single payload type carried from a domain leaf to
// BehaviorCallback; only the fields relevant to Tag are populated.
type Command struct {
	Tag CommandTag

	Pos      geometry.Vector2D
	TargetID int
	Backward bool
	Distance float64
}

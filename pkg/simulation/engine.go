package simulation

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/behaviortree"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/fogofwar"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/pathfind"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/quadtree"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/rrt"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/vfs"

	bt "github.com/joeycumines/go-behaviortree"
	"go.uber.org/zap"
)

// Reconstructed pacing constants: none of these appear in the retrieved
// original_source/ fragments (only method shapes survived there), so they
// are chosen for plausible pacing rather than transcribed. Documented in
// DESIGN.md alongside pkg/entity's reconstructed worker*/fighter* constants.
const (
	arrivalRadius     = 1.0
	spawnerMaxHealth  = 200
	spawnJitter       = 3.0
	tempEntTTL        = 15
	bulletHalfExtent  = 0.1
	winDetectTicks    = 30
	findPassableRange = 32
)

// UpdateKind discriminates the Game Loop's per-tick result (spec §6's
// `UpdateResult`).
type UpdateKind int

const (
	NoChange UpdateKind = iota
	TeamWon
)

// UpdateResult is returned from one Update call.
type UpdateResult struct {
	Kind   UpdateKind
	Winner entity.Team
}

// Stats are per-tick profiling counters (spec §9: "profiling counters that
// were process-global in the source become per-Game counters").
type Stats struct {
	EntitiesUpdated int
	BulletsAdvanced int
	BulletsHit      int
	TempEntsDecayed int
	EventsApplied   int
}

// teamForest is one team's pair of parsed behavior-tree sources.
type teamForest struct {
	agent   behaviortree.Forest
	spawner behaviortree.Forest
}

// Engine is the Game Loop of spec §4.9: it owns the entity arena, the
// shared board, per-team fog of war, and the single RNG every subsystem
// draws from, and advances all of it exactly one tick per Update call.
type Engine struct {
	log    *zap.SugaredLogger
	vfs    vfs.VFS
	params GameParams
	board  *Board

	rnd *rand.Rand

	entities       []*entity.Entity
	updateEntities []*entity.Entity
	nextID         int

	bullets  []entity.Bullet
	tempEnts []entity.TempEnt

	resources []*ResourceNode

	forests     [2]teamForest
	earlyForest behaviortree.Forest

	fog        [2]*fogofwar.FogOfWar
	emptyTicks [2]int

	tickEvents []GameEvent

	Stats Stats
}

// NewEngine builds a fresh board and entity arena from cfg's game
// parameters, loading each team's behavior-tree sources from store.
func NewEngine(cfg *Config, store vfs.VFS, log *zap.SugaredLogger) (*Engine, error) {
	params := cfg.Game
	e := &Engine{
		log:    log,
		vfs:    store,
		params: params,
		board:  NewBoard(params.Board.toMapgenParams()),
		rnd:    rand.New(rand.NewPCG(params.Board.Seed, params.Board.Seed^0x2545f4914f6cdd1d)),
		fog: [2]*fogofwar.FogOfWar{
			fogofwar.New(params.Board.Width, params.Board.Height),
			fogofwar.New(params.Board.Width, params.Board.Height),
		},
	}
	if err := e.loadTeamTrees(); err != nil {
		return nil, err
	}
	e.seedEntities()
	e.seedResources()
	return e, nil
}

func (e *Engine) loadTeamTrees() error {
	earlySrc, err := e.vfs.GetFile(e.params.AgentEarlySource)
	if err != nil {
		return fmt.Errorf("simulation: loading %q: %w", e.params.AgentEarlySource, err)
	}
	early, remainder := behaviortree.ParseFile(earlySrc)
	if remainder != "" || len(early) == 0 {
		return fmt.Errorf("simulation: %q failed to parse (remainder %q)", e.params.AgentEarlySource, remainder)
	}
	e.earlyForest = early

	for team := 0; team < 2; team++ {
		tc := e.params.Teams[team]

		agentSrc, err := e.vfs.GetFile(tc.AgentSource)
		if err != nil {
			return fmt.Errorf("simulation: loading %q: %w", tc.AgentSource, err)
		}
		agentForest, remainder := behaviortree.ParseFile(agentSrc)
		if remainder != "" || len(agentForest) == 0 {
			return fmt.Errorf("simulation: %q failed to parse (remainder %q)", tc.AgentSource, remainder)
		}

		spawnerSrc, err := e.vfs.GetFile(tc.SpawnerSource)
		if err != nil {
			return fmt.Errorf("simulation: loading %q: %w", tc.SpawnerSource, err)
		}
		spawnerForest, remainder := behaviortree.ParseFile(spawnerSrc)
		if remainder != "" || len(spawnerForest) == 0 {
			return fmt.Errorf("simulation: %q failed to parse (remainder %q)", tc.SpawnerSource, remainder)
		}

		e.forests[team] = teamForest{agent: agentForest, spawner: spawnerForest}
	}
	return nil
}

func (e *Engine) logf(msg string) {
	e.log.Info(msg)
}

// loadTreeFor (re)compiles ent's behavior tree from its team's cached
// forest, falling back to the shared early tree (SPEC_FULL supplemented
// feature) if the team's own tree fails to build for this entity's kind.
func (e *Engine) loadTreeFor(ent *entity.Entity) {
	forest := e.forests[ent.Team].agent
	agentNodes := true
	if ent.Kind == entity.KindSpawner {
		forest = e.forests[ent.Team].spawner
		agentNodes = false
	}
	if len(forest) == 0 {
		forest = e.earlyForest
		agentNodes = true
	}

	bridge := &behaviortree.Bridge{Callback: e.makeCallback(ent), Rand: e.rnd}
	node, err := behaviortree.Build(forest[0], bridge, ent.Blackboard, e.logf, agentNodes)
	if err != nil {
		e.log.Warnw("behavior tree build failed, falling back to early tree", "entity", ent.ID, "error", err)
		node, err = behaviortree.Build(e.earlyForest[0], bridge, ent.Blackboard, e.logf, true)
		if err != nil {
			e.log.Errorw("early behavior tree also failed to build", "entity", ent.ID, "error", err)
			return
		}
	}
	ent.BehaviorTree = node
}

// seedEntities places one spawner per team plus GameParams.AgentCount
// initial workers each (spec §9's resolved Open Question: agent_count caps
// initial seeding only, never runtime spawning).
func (e *Engine) seedEntities() {
	quarter := e.board.Grid.W / 4
	spawnerPos := [2]geometry.Vector2D{
		{X: float64(quarter), Y: float64(e.board.Grid.H / 2)},
		{X: float64(e.board.Grid.W - quarter), Y: float64(e.board.Grid.H / 2)},
	}

	for team := 0; team < 2; team++ {
		sp := entity.NewSpawner(e.nextID, entity.Team(team), e.findNearestPassable(spawnerPos[team]), spawnerMaxHealth)
		e.nextID++
		e.loadTreeFor(sp)
		e.entities = append(e.entities, sp)

		for i := 0; i < e.params.AgentCount; i++ {
			jitter := geometry.Vector2D{
				X: (e.rnd.Float64()*2 - 1) * spawnJitter * 2,
				Y: (e.rnd.Float64()*2 - 1) * spawnJitter * 2,
			}
			pos := e.findNearestPassable(sp.Pos.Add(jitter))
			agent := entity.NewAgent(e.nextID, entity.Team(team), entity.Worker, pos, 0)
			agent.SpawnerID = sp.ID
			e.nextID++
			e.loadTreeFor(agent)
			e.entities = append(e.entities, agent)
		}
	}
}

// findNearestPassable spirals out from pos (by grid distance) for the
// nearest passable cell, falling back to pos unchanged if none is found
// within findPassableRange — the board's largest-connected-component
// invariant (spec §3) means this only happens for a pathological config.
func (e *Engine) findNearestPassable(pos geometry.Vector2D) geometry.Vector2D {
	if e.board.Passable(pos) {
		return pos
	}
	cx, cy := int(pos.X), int(pos.Y)
	for r := 1; r < findPassableRange; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if dx*dx+dy*dy > r*r {
					continue
				}
				p := geometry.Vector2D{X: float64(cx + dx), Y: float64(cy + dy)}
				if e.board.Passable(p) {
					return p
				}
			}
		}
	}
	return pos
}

// Update advances the simulation exactly one tick, implementing spec
// §4.9's nine ordered steps.
func (e *Engine) Update() UpdateResult {
	if e.params.Paused {
		return UpdateResult{Kind: NoChange}
	}
	e.Stats = Stats{}

	// step 2: snapshot the entity list, tick every active entity's
	// behavior tree, and collect any emitted spawn events.
	e.updateEntities = e.entities
	e.tickEvents = e.tickEvents[:0]
	for _, ent := range e.entities {
		if !ent.Active {
			continue
		}
		ent.AdvanceCooldown()
		ent.AccumulateResource()
		if ent.BehaviorTree != nil {
			if _, err := behaviortree.TickOnce(ent.BehaviorTree); err != nil {
				e.log.Warnw("behavior tree tick error, skipped", "entity", ent.ID, "error", err)
			}
		}
		e.Stats.EntitiesUpdated++
	}

	e.harvestResources()

	// step 3: apply events best-effort (entities list grows here, never
	// during step 2's snapshot iteration).
	for _, ev := range e.tickEvents {
		e.applySpawnEvent(ev)
	}

	e.advanceBullets()   // step 4
	e.decayTempEnts()    // step 5
	e.dropInactive()     // step 6
	result := e.detectWinner() // step 7
	e.updateFog()        // step 8
	e.board.ReconcileOccupancy(e.entities) // step 9

	return result
}

func (e *Engine) applySpawnEvent(ev GameEvent) {
	var spawner *entity.Entity
	for _, ent := range e.entities {
		if ent.ID == ev.SpawnerID && ent.Kind == entity.KindSpawner {
			spawner = ent
			break
		}
	}
	if spawner == nil {
		return
	}

	candidate := func(int) (geometry.Vector2D, bool) {
		jitter := geometry.Vector2D{
			X: (e.rnd.Float64()*2 - 1) * spawnJitter,
			Y: (e.rnd.Float64()*2 - 1) * spawnJitter,
		}
		pos := spawner.Pos.Add(jitter)
		if !e.board.Passable(pos) {
			return pos, false
		}
		shape := ev.Class.Shape(pos, 0)
		for _, other := range e.entities {
			if other.Active && shape.Intersects(other.Shape()) {
				return pos, false
			}
		}
		return pos, true
	}

	agent, ok := entity.SpawnAgent(spawner, ev.Class, e.nextID, candidate)
	if !ok {
		return
	}
	e.nextID++
	e.loadTreeFor(agent)
	e.entities = append(e.entities, agent)
	e.Stats.EventsApplied++
}

// advanceBullets is spec §4.9 step 4: a bullet embedded in an obstacle is
// dropped outright; otherwise a swept separating-axis test against every
// other-team agent decides a hit (spawning a TempEnt and applying damage)
// before the bullet is allowed to actually move.
func (e *Engine) advanceBullets() {
	live := e.bullets[:0]
	for _, b := range e.bullets {
		if !e.board.Passable(b.Pos) {
			continue
		}

		shape := geometry.OBB{Center: b.Pos, Xs: bulletHalfExtent, Ys: bulletHalfExtent, Orient: 0}
		hit := false
		for _, ent := range e.entities {
			if !ent.Active || ent.Kind != entity.KindAgent || ent.Team == b.Team {
				continue
			}
			if collided, _ := geometry.BsearchCollision(shape, b.Velo, ent.Shape(), geometry.Vector2D{}); collided {
				ent.Damage(b.Damage)
				e.tempEnts = append(e.tempEnts, entity.NewTempEnt(b.Pos.Add(b.Velo), tempEntTTL))
				e.Stats.BulletsHit++
				hit = true
				break
			}
		}
		if hit {
			continue
		}

		b.Advance()
		if !e.board.Passable(b.Pos) {
			continue
		}
		live = append(live, b)
		e.Stats.BulletsAdvanced++
	}
	e.bullets = live
}

func (e *Engine) decayTempEnts() {
	live := e.tempEnts[:0]
	for i := range e.tempEnts {
		if e.tempEnts[i].Decay() {
			e.Stats.TempEntsDecayed++
			continue
		}
		live = append(live, e.tempEnts[i])
	}
	e.tempEnts = live
}

func (e *Engine) dropInactive() {
	live := e.entities[:0]
	for _, ent := range e.entities {
		if ent.Active {
			live = append(live, ent)
		}
	}
	e.entities = live
}

// detectWinner is spec §4.9 step 7: a team with zero agents for
// winDetectTicks consecutive ticks, while the other team still has at
// least one, loses.
func (e *Engine) detectWinner() UpdateResult {
	var agentCount [2]int
	for _, ent := range e.entities {
		if ent.Kind == entity.KindAgent {
			agentCount[ent.Team]++
		}
	}
	for team := 0; team < 2; team++ {
		if agentCount[team] == 0 {
			e.emptyTicks[team]++
		} else {
			e.emptyTicks[team] = 0
		}
	}
	for team := 0; team < 2; team++ {
		other := 1 - team
		if e.emptyTicks[team] >= winDetectTicks && agentCount[other] > 0 {
			return UpdateResult{Kind: TeamWon, Winner: entity.Team(other)}
		}
	}
	return UpdateResult{Kind: NoChange}
}

func (e *Engine) updateFog() {
	visible := func(x0, y0, x1, y1 int) bool {
		return e.board.Cache.IsPositionVisible(x0, y0, x1, y1)
	}
	for team := 0; team < 2; team++ {
		var positions []geometry.Vector2D
		for _, ent := range e.entities {
			if ent.Kind == entity.KindAgent && int(ent.Team) == team && ent.Active {
				positions = append(positions, ent.Pos)
			}
		}
		e.fog[team].UpdateVisibility(positions, e.params.SightRadius, visible)

		var realEnemies []fogofwar.EntityShadow
		for _, ent := range e.entities {
			if ent.Kind == entity.KindSpawner && int(ent.Team) != team && ent.Active {
				realEnemies = append(realEnemies, fogofwar.EntityShadow{ID: ent.ID, Pos: ent.Pos, Health: ent.Health})
			}
		}
		e.fog[team].Remember(e.liveResources(), realEnemies)
	}
}

// --- Command dispatch: the BehaviorCallback bound to one entity ---

// makeCallback closes over self directly rather than over a mutable
// "current entity" field: since Engine.Update ticks entities strictly one
// at a time, a per-entity closure gives each BehaviorCallback exactly the
// scoped exclusive borrow of self, and read-only access to the snapshot,
// that spec §5 describes.
func (e *Engine) makeCallback(self *entity.Entity) behaviortree.BehaviorCallback {
	return func(cmd behaviortree.Command) (bt.Status, interface{}) {
		return e.dispatch(self, cmd)
	}
}

func (e *Engine) dispatch(self *entity.Entity, cmd behaviortree.Command) (bt.Status, interface{}) {
	switch cmd.Tag {
	case behaviortree.CmdFindEnemy:
		return e.cmdFindEnemy(self)
	case behaviortree.CmdFindPath:
		return e.cmdFindPath(self)
	case behaviortree.CmdFollowPath:
		return e.cmdFollowPath(self)
	case behaviortree.CmdDrive:
		return e.cmdDrive(self, cmd)
	case behaviortree.CmdMoveTo:
		return e.cmdMoveTo(self, cmd)
	case behaviortree.CmdShoot:
		return e.cmdShoot(self)
	case behaviortree.CmdAvoidance:
		return e.cmdAvoidance(self, cmd)
	case behaviortree.CmdClearAvoidance:
		self.SearchState = nil
		return bt.Success, nil
	case behaviortree.CmdPathNextNode:
		return e.cmdPathNextNode(self)
	case behaviortree.CmdPredictForward:
		forward := geometry.Vector2D{X: math.Cos(self.Orient), Y: math.Sin(self.Orient)}
		return bt.Success, self.Pos.Add(forward.Mul(cmd.Distance))
	case behaviortree.CmdFaceToTarget:
		return e.cmdFaceToTarget(self)
	case behaviortree.CmdSpawnFighter:
		return e.cmdSpawn(self, entity.Fighter)
	case behaviortree.CmdSpawnWorker:
		return e.cmdSpawn(self, entity.Worker)
	case behaviortree.CmdGetResource:
		return bt.Success, float64(self.Resource)
	case behaviortree.CmdHasTarget:
		return e.cmdHasTarget(self)
	case behaviortree.CmdHasPath:
		if len(self.Path) > 0 {
			return bt.Success, nil
		}
		return bt.Failure, nil
	case behaviortree.CmdIsTargetVisible:
		return e.cmdIsTargetVisible(self)
	case behaviortree.CmdIsArrivedGoal:
		if self.Goal != nil && self.Pos.DistanceTo(*self.Goal) < arrivalRadius {
			return bt.Success, nil
		}
		return bt.Failure, nil
	}
	return bt.Failure, nil
}

func (e *Engine) cmdFindEnemy(self *entity.Entity) (bt.Status, interface{}) {
	bestID := -1
	bestDist := math.Inf(1)
	for _, other := range e.updateEntities {
		if other.ID == self.ID || !other.Active || other.Team == self.Team {
			continue
		}
		d := self.Pos.DistanceTo(other.Pos)
		if d > e.params.SightRadius || d >= bestDist {
			continue
		}
		if !e.board.IsVisible(self.Pos, other.Pos) {
			continue
		}
		bestID, bestDist = other.ID, d
	}
	if bestID < 0 {
		return bt.Failure, nil
	}
	self.Target = entity.Target{Kind: entity.TargetEntity, EntityID: bestID}
	return bt.Success, nil
}

func (e *Engine) cmdFindPath(self *entity.Entity) (bt.Status, interface{}) {
	goalPos, ok := e.targetPos(self)
	if !ok {
		return bt.Failure, nil
	}
	self.Goal = &goalPos
	path, _, found := pathfind.FindPath(e.board.QTree, IgnoreID(self.ID), self.Pos, goalPos, arrivalRadius)
	if !found {
		return bt.Failure, nil
	}
	self.Path = path
	return bt.Success, nil
}

func (e *Engine) cmdFollowPath(self *entity.Entity) (bt.Status, interface{}) {
	if len(self.Path) == 0 {
		return bt.Failure, nil
	}
	node := self.Path[len(self.Path)-1]
	if self.Pos.DistanceTo(node.Pos) < node.Radius {
		self.Path = self.Path[:len(self.Path)-1]
		if len(self.Path) == 0 {
			return bt.Success, true
		}
		return bt.Running, nil
	}
	_, committed := entity.MoveTo(self, node.Pos, false, e.passable(), e.collide(self))
	if !committed {
		return bt.Failure, nil
	}
	return bt.Running, nil
}

func (e *Engine) cmdDrive(self *entity.Entity, cmd behaviortree.Command) (bt.Status, interface{}) {
	delta := self.Class.Speed()
	if cmd.Backward {
		delta = -delta
	}
	if entity.Drive(self, delta, e.passable(), e.collide(self)) {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

func (e *Engine) cmdMoveTo(self *entity.Entity, cmd behaviortree.Command) (bt.Status, interface{}) {
	_, committed := entity.MoveTo(self, cmd.Pos, false, e.passable(), e.collide(self))
	if committed {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

func (e *Engine) cmdShoot(self *entity.Entity) (bt.Status, interface{}) {
	targetPos, ok := e.targetPos(self)
	if !ok {
		return bt.Failure, nil
	}
	b, ok := entity.ShootBullet(self, targetPos)
	if !ok {
		return bt.Failure, nil
	}
	e.bullets = append(e.bullets, b)
	return bt.Success, nil
}

// cmdAvoidance drives the RRT local planner: restart on a stale goal,
// replay collision checks against the already-found path, run one
// expansion step (spec §4.4's default `expand_states = 1`) with the
// sampler selected for this entity's class at spawn time, and — once a
// path exists — commit one step of FollowAvoidancePath directly, so the
// primitive built for it is actually exercised rather than left unwired.
func (e *Engine) cmdAvoidance(self *entity.Entity, cmd behaviortree.Command) (bt.Status, interface{}) {
	goal := rrt.AgentState{X: cmd.Pos.X, Y: cmd.Pos.Y, Heading: self.Orient}
	collide := e.rrtCollide(self)

	if self.SearchState == nil || self.SearchState.GoalStale(goal) {
		start := rrt.AgentState{X: self.Pos.X, Y: self.Pos.Y, Heading: self.Orient}
		self.SearchState = rrt.NewSearchState(e.rnd.Uint64(), start, goal)
	} else {
		self.SearchState.CheckAvoidanceCollision(collide)
	}

	direction := 1.0
	if cmd.Backward {
		direction = -1.0
	}
	sampler := rrt.NewSampler(self.AvoidanceSampler, float64(e.board.Grid.W), float64(e.board.Grid.H))
	startIdx := lowestStartIndex(self.SearchState.StartSet)
	self.SearchState.Expand(startIdx, direction, sampler, collide)

	if self.SearchState.FoundPath == nil {
		return bt.Failure, nil
	}
	if entity.FollowAvoidancePath(self, e.passable(), e.collide(self)) {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

// lowestStartIndex picks the smallest key of a SearchState's start set: a
// deterministic stand-in for ranging over the map directly (spec §5's
// determinism guarantee would otherwise depend on Go's unspecified map
// iteration order).
func lowestStartIndex(set map[int]bool) int {
	best := -1
	for k := range set {
		if best < 0 || k < best {
			best = k
		}
	}
	return best
}

func (e *Engine) cmdPathNextNode(self *entity.Entity) (bt.Status, interface{}) {
	if len(self.Path) == 0 {
		return bt.Failure, nil
	}
	return bt.Success, self.Path[len(self.Path)-1].Pos
}

func (e *Engine) cmdFaceToTarget(self *entity.Entity) (bt.Status, interface{}) {
	targetPos, ok := e.targetPos(self)
	if !ok {
		return bt.Failure, nil
	}
	switch entity.OrientTo(self, targetPos, false, e.collide(self)) {
	case entity.Arrived:
		return bt.Success, nil
	case entity.Blocked:
		return bt.Failure, nil
	default:
		return bt.Running, nil
	}
}

func (e *Engine) cmdSpawn(self *entity.Entity, class entity.Class) (bt.Status, interface{}) {
	if self.Kind != entity.KindSpawner {
		return bt.Failure, nil
	}
	e.tickEvents = append(e.tickEvents, GameEvent{Kind: EventSpawnAgent, SpawnerID: self.ID, Class: class})
	return bt.Success, nil
}

func (e *Engine) cmdHasTarget(self *entity.Entity) (bt.Status, interface{}) {
	switch self.Target.Kind {
	case entity.NoTarget:
		return bt.Failure, nil
	case entity.TargetEntity:
		if !e.aliveInSnapshot(self.Target.EntityID) {
			self.Target = entity.Target{}
			return bt.Failure, nil
		}
	}
	return bt.Success, nil
}

func (e *Engine) cmdIsTargetVisible(self *entity.Entity) (bt.Status, interface{}) {
	targetPos, ok := e.targetPos(self)
	if !ok {
		return bt.Failure, nil
	}
	if self.Pos.DistanceTo(targetPos) > e.params.SightRadius {
		return bt.Failure, nil
	}
	if !e.board.IsVisible(self.Pos, targetPos) {
		return bt.Failure, nil
	}
	return bt.Success, nil
}

// targetPos resolves self's current Target to a concrete position: the
// literal position for TargetPosition, or the live snapshot position of
// the referenced entity for TargetEntity (false if it's gone).
func (e *Engine) targetPos(self *entity.Entity) (geometry.Vector2D, bool) {
	switch self.Target.Kind {
	case entity.TargetPosition:
		return self.Target.Pos, true
	case entity.TargetEntity:
		for _, other := range e.updateEntities {
			if other.ID == self.Target.EntityID && other.Active {
				return other.Pos, true
			}
		}
		return geometry.Vector2D{}, false
	default:
		return geometry.Vector2D{}, false
	}
}

func (e *Engine) aliveInSnapshot(id int) bool {
	for _, other := range e.updateEntities {
		if other.ID == id {
			return other.Active
		}
	}
	return false
}

func (e *Engine) passable() entity.Passable {
	return e.board.Passable
}

// collide returns an entity.Collide closure testing candidate against
// every other active entity's current shape in the snapshot — self is
// skipped, never compared against its own shape.
func (e *Engine) collide(self *entity.Entity) entity.Collide {
	return func(candidate geometry.OBB) bool {
		for _, other := range e.updateEntities {
			if other.ID == self.ID || !other.Active {
				continue
			}
			if candidate.Intersects(other.Shape()) {
				return true
			}
		}
		return false
	}
}

// rrtCollide implements spec §4.4's planner collision primitive: a swept
// OBB test against every other entity, then a grid-passability scan along
// the edge at DIST_RADIUS*0.5 spacing.
func (e *Engine) rrtCollide(self *entity.Entity) rrt.CollisionCheck {
	return func(from, to rrt.AgentState) bool {
		shape := self.Class.Shape(from.Pos(), from.Heading)
		velo := to.Pos().Sub(from.Pos())
		for _, other := range e.updateEntities {
			if other.ID == self.ID || !other.Active {
				continue
			}
			if hit, _ := geometry.BsearchCollision(shape, velo, other.Shape(), geometry.Vector2D{}); hit {
				return true
			}
		}

		dist := velo.Len()
		if dist <= 0 {
			return false
		}
		samples := int(dist/(rrt.DistRadius*0.5)) + 1
		for i := 1; i <= samples; i++ {
			p := from.Pos().Lerp(to.Pos(), float64(i)/float64(samples))
			if !e.board.Passable(p) {
				return true
			}
		}
		return false
	}
}

// --- Frontend-facing accessors (spec §6) ---

// OccupancyImage rasterizes the board at native resolution: impassable
// cells read dark; passable cells read plain gray, or tinted by per-team
// fog clarity when coloredFog is set.
func (e *Engine) OccupancyImage(coloredFog bool) (image.Point, []byte) {
	w, h := e.board.Grid.W, e.board.Grid.H
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (x + y*w) * 3
			if !e.board.Grid.At(x, y) {
				out[i], out[i+1], out[i+2] = 20, 20, 20
				continue
			}
			if !coloredFog {
				out[i], out[i+1], out[i+2] = 200, 200, 200
				continue
			}
			clear0 := e.fog[0].Age.IsClear(x, y)
			clear1 := e.fog[1].Age.IsClear(x, y)
			switch {
			case clear0 && clear1:
				out[i], out[i+1], out[i+2] = 200, 220, 200
			case clear0:
				out[i], out[i+1], out[i+2] = 120, 200, 120
			case clear1:
				out[i], out[i+1], out[i+2] = 200, 120, 120
			default:
				out[i], out[i+1], out[i+2] = 60, 60, 60
			}
		}
	}
	return image.Point{X: w, Y: h}, out
}

// LabeledImage returns, pixel by pixel, the quadtree's own leaf-level
// reading: -1 for Obstacle, an occupying entity's id for Occupied, 0 for
// Free. A simpler stand-in for labeling by mesh triangle component, built
// from data the engine already maintains incrementally.
func (e *Engine) LabeledImage() (image.Point, []int32) {
	w, h := e.board.Grid.W, e.board.Grid.H
	out := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, state, ok := e.board.QTree.FindByIdx(x, y)
			switch {
			case !ok || state.Kind == quadtree.Obstacle:
				out[x+y*w] = -1
			case state.Kind == quadtree.Occupied:
				out[x+y*w] = int32(state.OccupantID)
			default:
				out[x+y*w] = 0
			}
		}
	}
	return image.Point{X: w, Y: h}, out
}

// WithQTree gives a renderer read access to the navigation quadtree
// without exposing Engine's other internals.
func (e *Engine) WithQTree(fn func(*quadtree.QTree)) {
	fn(e.board.QTree)
}

// Entities returns the live entity list. Callers must treat it as
// read-only; Engine reuses the backing array across ticks.
func (e *Engine) Entities() []*entity.Entity {
	return e.entities
}

// EntityByID finds a live entity by id, for renderer selection.
func (e *Engine) EntityByID(id int) (*entity.Entity, bool) {
	for _, ent := range e.entities {
		if ent.ID == id {
			return ent, true
		}
	}
	return nil, false
}

// NewGame resets the engine in place onto a freshly generated board (spec
// §6's `new_game(seed, board_type, shape)`).
func (e *Engine) NewGame(seed uint64, boardType BoardType, w, h int) {
	e.params.Board.Seed = seed
	e.params.Board.Type = boardType
	e.params.Board.Width = w
	e.params.Board.Height = h

	e.board = NewBoard(e.params.Board.toMapgenParams())
	e.rnd = rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d))
	e.entities = nil
	e.nextID = 0
	e.bullets = nil
	e.tempEnts = nil
	e.emptyTicks = [2]int{}
	e.fog = [2]*fogofwar.FogOfWar{fogofwar.New(w, h), fogofwar.New(w, h)}
	e.resources = nil

	e.seedEntities()
	e.seedResources()
}

// TryLoadBehaviorTree parses src and, only on a fully-valid (empty
// remainder) parse, saves it to the VFS under which, installs it as the
// matching team/kind's tree, and rebuilds every live entity's compiled
// tree against the new forest (spec §6: "only on empty-remainder success
// does the engine swap the params' source reference").
func (e *Engine) TryLoadBehaviorTree(src, which string) bool {
	forest, remainder := behaviortree.ParseFile(src)
	if remainder != "" || len(forest) == 0 {
		return false
	}
	if err := e.vfs.SaveFile(which, src); err != nil {
		e.log.Warnw("failed saving behavior tree source", "path", which, "error", err)
		return false
	}

	matched := false
	for team := 0; team < 2; team++ {
		tc := e.params.Teams[team]
		switch which {
		case tc.AgentSource:
			e.forests[team].agent = forest
			matched = true
		case tc.SpawnerSource:
			e.forests[team].spawner = forest
			matched = true
		}
	}
	if which == e.params.AgentEarlySource {
		e.earlyForest = forest
		matched = true
	}
	if !matched {
		return false
	}

	for _, ent := range e.entities {
		e.loadTreeFor(ent)
	}
	return true
}

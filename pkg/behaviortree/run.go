package behaviortree

import bt "github.com/joeycumines/go-behaviortree"

// TickOnce drives node through exactly one tick, unpacking the (Tick,
// []Node) pair the library's Node type hides behind a function value. The
// retrieved pack never shows this call directly (every user of the library
// only registers trees, never drives one to completion itself), so this is
// the engine's own minimal reading of bt.Node's documented shape: calling it
// yields the tick function alongside its children, and ticking is just
// invoking that function with them.
func TickOnce(node bt.Node) (bt.Status, error) {
	tick, children := node()
	return tick(children)
}

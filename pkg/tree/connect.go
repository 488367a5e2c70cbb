package tree

// Connectivity tracks reachability from the document root, independent of
// the direct logical parent link: a subtree can be fully mounted while still
// disconnected, e.g. built off-tree and attached later. Events are debounced
// per node, so the same direction never fires twice in a row.

// isReachable walks the native ancestor chain looking for a declared
// document root: either a node registered via MarkRoot or one whose logical
// wrapper carries the root flag.
func isReachable(native NativeNode) bool {
	for cur := native; cur != nil; cur = cur.Parent() {
		if roots[cur] {
			return true
		}
		if l := LogicalOf(cur); l != nil && l.root {
			return true
		}
	}
	return false
}

// connectivityTargets collects, depth-first, the logical subtree nodes whose
// connected state differs from the requested direction. The debounce lives
// here: already-converted nodes are skipped.
func connectivityTargets(n *Node, connected bool) []*Node {
	var out []*Node
	n.visit(func(m *Node) {
		if m.connected != connected {
			out = append(out, m)
		}
	})
	return out
}

// FireConnectivity informs the tree manager that node's ancestor chain newly
// reached (connected=true) or left (connected=false) the document root. It
// exists for host mechanisms that mutate the physical tree outside this
// package, since native insertion APIs do not report reachability changes.
//
// The pre event fires for every affected descendant, then states flip and
// the post event fires, depth-first in both passes.
func FireConnectivity(n *Node, connected bool) {
	if n == nil {
		return
	}
	pre, post := EventWillConnect, EventDidConnect
	if !connected {
		pre, post = EventWillDisconnect, EventDidDisconnect
	}
	targets := connectivityTargets(n, connected)
	for _, t := range targets {
		t.fire(pre)
	}
	for _, t := range targets {
		t.connected = connected
		t.fire(post)
	}
}

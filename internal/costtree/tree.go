// Package costtree holds the OU cost-rollup tree: an n-ary tree
// mirroring the organization's account grouping, annotated with
// per-account and recursively aggregated per-node spend.
package costtree

import (
	"github.com/shopspring/decimal"

	"github.com/awsaudit-dev/awsaudit/internal/model"
)

// NodeID indexes a node within a Tree's arena.
type NodeID int

// None marks the absence of a parent.
const None NodeID = -1

// node is arena storage for one OU. Parent is an index back-link used
// for path reconstruction only; ownership runs strictly top-down
// through children.
type node struct {
	id       string
	name     string
	currency string
	parent   NodeID
	children []NodeID
	accounts []model.AccountRecord

	// nodeSpend covers every account in the subtree rooted here;
	// directSpend only the accounts attached to this node.
	nodeSpend   decimal.Decimal
	directSpend decimal.Decimal
}

// Tree is an arena-backed OU tree. The first root is the organization
// root; a second root may be added for accounts no longer in the
// organization, and its spend never rolls up into the first.
type Tree struct {
	nodes []node
	roots []NodeID
}

// New creates a tree whose arena holds only the organization root.
func New(root model.NodeIdentity, currency string) *Tree {
	t := &Tree{}
	t.roots = append(t.roots, t.alloc(root, currency, None))
	return t
}

func (t *Tree) alloc(identity model.NodeIdentity, currency string, parent NodeID) NodeID {
	t.nodes = append(t.nodes, node{
		id:          identity.ID,
		name:        identity.Name,
		currency:    currency,
		parent:      parent,
		nodeSpend:   decimal.Zero,
		directSpend: decimal.Zero,
	})
	return NodeID(len(t.nodes) - 1)
}

// Root returns the organization root.
func (t *Tree) Root() NodeID {
	return t.roots[0]
}

// Roots returns every top-level node in creation order: the
// organization root first, then the synthetic orphan root if one was
// added.
func (t *Tree) Roots() []NodeID {
	return t.roots
}

// AddChild creates a child OU under parent. A node is only ever
// created with a parent that already exists, so parent links are
// acyclic by construction.
func (t *Tree) AddChild(parent NodeID, identity model.NodeIdentity, currency string) NodeID {
	child := t.alloc(identity, currency, parent)
	t.nodes[parent].children = append(t.nodes[parent].children, child)
	return child
}

// AddRoot creates a parentless sibling of the organization root.
func (t *Tree) AddRoot(identity model.NodeIdentity, currency string) NodeID {
	id := t.alloc(identity, currency, None)
	t.roots = append(t.roots, id)
	return id
}

// AddAccount attaches an account to a node and propagates its total
// to every ancestor immediately, walking parent indices to the root.
func (t *Tree) AddAccount(id NodeID, rec model.AccountRecord) {
	n := &t.nodes[id]
	n.accounts = append(n.accounts, rec)
	n.directSpend = n.directSpend.Add(rec.Total)
	n.nodeSpend = n.nodeSpend.Add(rec.Total)

	for p := n.parent; p != None; p = t.nodes[p].parent {
		t.nodes[p].nodeSpend = t.nodes[p].nodeSpend.Add(rec.Total)
	}
}

// ID returns the directory identifier of a node.
func (t *Tree) ID(id NodeID) string { return t.nodes[id].id }

// Name returns the display name of a node.
func (t *Tree) Name(id NodeID) string { return t.nodes[id].name }

// Currency returns the node's inherited default currency.
func (t *Tree) Currency(id NodeID) string { return t.nodes[id].currency }

// NodeSpend returns the aggregated spend of the subtree rooted at id.
func (t *Tree) NodeSpend(id NodeID) decimal.Decimal { return t.nodes[id].nodeSpend }

// DirectSpend returns the spend of accounts attached directly to id.
func (t *Tree) DirectSpend(id NodeID) decimal.Decimal { return t.nodes[id].directSpend }

// Accounts returns the accounts attached directly to id, in
// attachment order.
func (t *Tree) Accounts(id NodeID) []model.AccountRecord { return t.nodes[id].accounts }

// Children returns id's child OUs in directory order.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].children }

// Parent returns id's parent, or None for top-level nodes.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// ParentPath returns the display names from the root down to id's
// parent. Nil for top-level nodes.
func (t *Tree) ParentPath(id NodeID) []string {
	var path []string
	for p := t.nodes[id].parent; p != None; p = t.nodes[p].parent {
		path = append([]string{t.nodes[p].name}, path...)
	}
	return path
}

// TotalSpend sums the spend of every top-level node, orphans included.
// Equals the ledger total plus the zero-spend accounts the directory
// contributed.
func (t *Tree) TotalSpend() decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.roots {
		total = total.Add(t.nodes[r].nodeSpend)
	}
	return total
}

// Walk visits the subtree rooted at id pre-order: the node itself,
// then each child subtree in directory order.
func (t *Tree) Walk(id NodeID, visit func(NodeID)) {
	visit(id)
	for _, child := range t.nodes[id].children {
		t.Walk(child, visit)
	}
}

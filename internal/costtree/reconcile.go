package costtree

import (
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/awsaudit-dev/awsaudit/internal/billing"
	"github.com/awsaudit-dev/awsaudit/internal/model"
	"github.com/awsaudit-dev/awsaudit/internal/orgs"
)

// Orphan node identity for ledger accounts absent from the live
// organization (spend from accounts that have since left).
const (
	OrphanNodeID   = "leavers"
	OrphanNodeName = "No Longer in AWS Organization"
)

// Reconciler merges a spend ledger against the live organization
// directory into a populated cost tree. The two sources are
// independent and may disagree: accounts in the directory but not the
// ledger had no billed usage; accounts in the ledger but not the
// directory are attached under a synthetic orphan root.
type Reconciler struct {
	dir    orgs.Directory
	logger log.FieldLogger
}

// NewReconciler creates a Reconciler over the given directory.
func NewReconciler(dir orgs.Directory, logger log.FieldLogger) *Reconciler {
	return &Reconciler{dir: dir, logger: logger}
}

// Build populates a fresh tree from the directory shape and the
// ledger, then runs the orphan pass. Any directory failure aborts the
// build; no partial tree is returned.
func (r *Reconciler) Build(ledger *billing.Ledger) (*Tree, error) {
	rootIdentity, err := r.dir.Root()
	if err != nil {
		return nil, fmt.Errorf("resolving organization root: %w", err)
	}

	t := New(rootIdentity, ledger.Currency)
	if err := r.populate(t, t.Root(), ledger); err != nil {
		return nil, err
	}
	if err := r.addOrphans(t, ledger); err != nil {
		return nil, err
	}
	return t, nil
}

// populate recursively fills in a node: its directly-attached
// accounts first, then each child OU depth-first.
func (r *Reconciler) populate(t *Tree, id NodeID, ledger *billing.Ledger) error {
	accounts, err := r.dir.Accounts(t.ID(id))
	if err != nil {
		return err
	}

	for _, acct := range accounts {
		if rec, ok := ledger.Get(acct.ID); ok {
			// The ledger's name is presumed more current than the
			// directory's.
			t.AddAccount(id, rec)
			continue
		}
		// In the organization but absent from the bill: zero spend
		// this period.
		t.AddAccount(id, model.AccountRecord{
			ID:       acct.ID,
			Name:     acct.Name,
			Total:    decimal.Zero,
			Currency: ledger.Currency,
		})
	}

	children, err := r.dir.Children(t.ID(id))
	if err != nil {
		return err
	}
	for _, child := range children {
		cid := t.AddChild(id, child, ledger.Currency)
		if err := r.populate(t, cid, ledger); err != nil {
			return err
		}
	}
	return nil
}

// addOrphans attaches ledger accounts missing from the organization's
// full roster under a synthetic root-level sibling, created lazily so
// a fully-consistent run adds no node. The sibling has no parent, so
// its spend never reaches the organization root.
func (r *Reconciler) addOrphans(t *Tree, ledger *billing.Ledger) error {
	roster, err := r.dir.AllAccountIDs()
	if err != nil {
		return fmt.Errorf("listing organization account roster: %w", err)
	}

	orphanNode := None
	for _, rec := range ledger.All() {
		if _, ok := roster[rec.ID]; ok {
			continue
		}
		if orphanNode == None {
			orphanNode = t.AddRoot(model.NodeIdentity{
				ID:   OrphanNodeID,
				Name: OrphanNodeName,
			}, ledger.Currency)
		}
		r.logger.WithField("account", rec.ID).Debug("ledger account not in organization")
		t.AddAccount(orphanNode, rec)
	}
	return nil
}

package orgs

import (
	"fmt"

	"github.com/awsaudit-dev/awsaudit/internal/model"
)

// StaticDirectory is an in-memory Directory over a fixed organization
// shape. Used by tests and offline dry runs.
type StaticDirectory struct {
	RootNode model.NodeIdentity

	// ChildOUs and OUAccounts are keyed by parent OU identifier.
	ChildOUs   map[string][]model.NodeIdentity
	OUAccounts map[string][]model.AccountIdentity

	// Errs, when set, forces the named method to fail. Keys are
	// "root", "children", "accounts", "all".
	Errs map[string]error
}

func (d *StaticDirectory) Root() (model.NodeIdentity, error) {
	if err := d.Errs["root"]; err != nil {
		return model.NodeIdentity{}, err
	}
	if d.RootNode.ID == "" {
		return model.NodeIdentity{}, fmt.Errorf("static directory has no root")
	}
	return d.RootNode, nil
}

func (d *StaticDirectory) Children(ouID string) ([]model.NodeIdentity, error) {
	if err := d.Errs["children"]; err != nil {
		return nil, err
	}
	return d.ChildOUs[ouID], nil
}

func (d *StaticDirectory) Accounts(ouID string) ([]model.AccountIdentity, error) {
	if err := d.Errs["accounts"]; err != nil {
		return nil, err
	}
	return d.OUAccounts[ouID], nil
}

func (d *StaticDirectory) AllAccountIDs() (map[string]struct{}, error) {
	if err := d.Errs["all"]; err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	for _, accounts := range d.OUAccounts {
		for _, acct := range accounts {
			ids[acct.ID] = struct{}{}
		}
	}
	return ids, nil
}

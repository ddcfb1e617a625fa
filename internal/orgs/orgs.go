// Package orgs supplies the live organization shape: the root, the
// OU hierarchy, and account membership.
package orgs

import "github.com/awsaudit-dev/awsaudit/internal/model"

// Directory is the organization lookup surface the cost tree is
// populated from. Implementations materialize any pagination, so
// callers always see complete listings. Calls are sequential; a failed
// lookup is fatal to the run.
type Directory interface {
	// Root returns the identity of the organization's root OU.
	Root() (model.NodeIdentity, error)

	// Children returns the OUs directly under the given OU, in the
	// order the directory reports them. Empty for leaf OUs.
	Children(ouID string) ([]model.NodeIdentity, error)

	// Accounts returns the accounts attached directly to the given OU.
	Accounts(ouID string) ([]model.AccountIdentity, error)

	// AllAccountIDs returns the identifiers of every account in the
	// organization, regardless of OU placement.
	AllAccountIDs() (map[string]struct{}, error)
}

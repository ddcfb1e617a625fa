package costtree

import (
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsaudit-dev/awsaudit/internal/billing"
	"github.com/awsaudit-dev/awsaudit/internal/model"
	"github.com/awsaudit-dev/awsaudit/internal/orgs"
)

func testLogger() log.FieldLogger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDirectory() *orgs.StaticDirectory {
	return &orgs.StaticDirectory{
		RootNode: model.NodeIdentity{ID: "r-1", Name: "ROOT"},
		ChildOUs: map[string][]model.NodeIdentity{
			"r-1":  {{ID: "ou-a", Name: "lab"}, {ID: "ou-b", Name: "empty-ou"}},
			"ou-a": {{ID: "ou-aa", Name: "genomics"}},
		},
		OUAccounts: map[string][]model.AccountIdentity{
			"r-1":   {{ID: "100", Name: "payer"}},
			"ou-a":  {{ID: "200", Name: "lab-shared"}},
			"ou-aa": {{ID: "300", Name: "seq-prod-directory-name"}, {ID: "400", Name: "dormant"}},
		},
	}
}

func testLedger() *billing.Ledger {
	return billing.NewLedger("USD", model.BillingPeriod{Year: "2026", Month: "08"},
		acct("100", "payer", "1"),
		acct("200", "lab-shared", "10"),
		acct("300", "seq-prod", "100"),
		// 500 is in the bill but not in the organization.
		acct("500", "departed", "50"),
	)
}

func TestBuild(t *testing.T) {
	r := NewReconciler(testDirectory(), testLogger())
	tree, err := r.Build(testLedger())
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, "ROOT", tree.Name(root))

	// Root spend covers the directory accounts with ledger entries
	// plus the zero-spend dormant account, never the orphan.
	assert.True(t, tree.NodeSpend(root).Equal(dec("111")), "got %s", tree.NodeSpend(root))

	// Directory shape is mirrored, including the empty OU.
	children := tree.Children(root)
	require.Len(t, children, 2)
	assert.Equal(t, "lab", tree.Name(children[0]))
	assert.Equal(t, "empty-ou", tree.Name(children[1]))
	assert.Empty(t, tree.Accounts(children[1]))
	assert.Empty(t, tree.Children(children[1]))
	assert.True(t, tree.NodeSpend(children[1]).IsZero())
}

func TestBuildLedgerNameWins(t *testing.T) {
	r := NewReconciler(testDirectory(), testLogger())
	tree, err := r.Build(testLedger())
	require.NoError(t, err)

	lab := tree.Children(tree.Root())[0]
	genomics := tree.Children(lab)[0]
	accounts := tree.Accounts(genomics)
	require.Len(t, accounts, 2)

	// 300 exists in both sources: the ledger name is kept.
	assert.Equal(t, "seq-prod", accounts[0].Name)
	assert.True(t, accounts[0].Total.Equal(dec("100")))

	// 400 exists only in the directory: zero spend, directory name,
	// report default currency.
	assert.Equal(t, "dormant", accounts[1].Name)
	assert.True(t, accounts[1].Total.IsZero())
	assert.Equal(t, "USD", accounts[1].Currency)
}

func TestBuildOrphanPass(t *testing.T) {
	r := NewReconciler(testDirectory(), testLogger())
	tree, err := r.Build(testLedger())
	require.NoError(t, err)

	roots := tree.Roots()
	require.Len(t, roots, 2)

	orphan := roots[1]
	assert.Equal(t, OrphanNodeName, tree.Name(orphan))
	assert.Equal(t, None, tree.Parent(orphan))

	accounts := tree.Accounts(orphan)
	require.Len(t, accounts, 1)
	assert.Equal(t, "500", accounts[0].ID)
	assert.True(t, tree.NodeSpend(orphan).Equal(dec("50")))

	// Root aggregation invariant: root spend equals the sum over every
	// account reachable from the root, orphans excluded.
	sum := dec("0")
	tree.Walk(tree.Root(), func(id NodeID) {
		for _, a := range tree.Accounts(id) {
			sum = sum.Add(a.Total)
		}
	})
	assert.True(t, tree.NodeSpend(tree.Root()).Equal(sum))
	assert.True(t, tree.TotalSpend().Equal(dec("161")))
}

func TestBuildNoOrphansNoSyntheticNode(t *testing.T) {
	ledger := billing.NewLedger("USD", model.BillingPeriod{Year: "2026", Month: "08"},
		acct("100", "payer", "1"))

	r := NewReconciler(testDirectory(), testLogger())
	tree, err := r.Build(ledger)
	require.NoError(t, err)
	assert.Len(t, tree.Roots(), 1)
}

func TestBuildDirectoryErrorsFatal(t *testing.T) {
	for _, key := range []string{"root", "children", "accounts", "all"} {
		dir := testDirectory()
		dir.Errs = map[string]error{key: errors.New("directory unavailable")}

		r := NewReconciler(dir, testLogger())
		_, err := r.Build(testLedger())
		require.Error(t, err, "expected %s failure to propagate", key)
	}
}

package orgs

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	log "github.com/sirupsen/logrus"

	"github.com/awsaudit-dev/awsaudit/internal/model"
)

// RootName is the display name for the organization root. The
// Organizations API reports roots without a human-meaningful name.
const RootName = "ROOT"

// AWSDirectory is a Directory backed by the AWS Organizations API.
// Every method may issue several sequential paginated calls; this is
// the dominant latency cost of OU-mode reports.
type AWSDirectory struct {
	api    organizationsiface.OrganizationsAPI
	logger log.FieldLogger
}

// NewAWSDirectory creates a directory using ambient AWS credentials.
func NewAWSDirectory(logger log.FieldLogger) *AWSDirectory {
	sess := session.Must(session.NewSession())
	return &AWSDirectory{api: organizations.New(sess), logger: logger}
}

// NewAWSDirectoryWithClient creates a directory with an explicit
// Organizations client.
func NewAWSDirectoryWithClient(api organizationsiface.OrganizationsAPI, logger log.FieldLogger) *AWSDirectory {
	return &AWSDirectory{api: api, logger: logger}
}

// Root returns the first root the organization reports.
func (d *AWSDirectory) Root() (model.NodeIdentity, error) {
	out, err := d.api.ListRoots(&organizations.ListRootsInput{})
	if err != nil {
		return model.NodeIdentity{}, fmt.Errorf("listing organization roots: %w", err)
	}
	if len(out.Roots) == 0 {
		return model.NodeIdentity{}, fmt.Errorf("organization reports no roots")
	}
	return model.NodeIdentity{
		ID:   aws.StringValue(out.Roots[0].Id),
		Name: RootName,
	}, nil
}

// Children lists the OUs directly under ouID, exhausting pagination.
func (d *AWSDirectory) Children(ouID string) ([]model.NodeIdentity, error) {
	var children []model.NodeIdentity
	input := &organizations.ListOrganizationalUnitsForParentInput{
		ParentId: aws.String(ouID),
	}

	err := d.api.ListOrganizationalUnitsForParentPages(input,
		func(out *organizations.ListOrganizationalUnitsForParentOutput, _ bool) bool {
			for _, ou := range out.OrganizationalUnits {
				children = append(children, model.NodeIdentity{
					ID:   aws.StringValue(ou.Id),
					Name: aws.StringValue(ou.Name),
				})
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("listing child OUs of %s: %w", ouID, err)
	}

	d.logger.WithFields(log.Fields{"ou": ouID, "children": len(children)}).Debug("listed child OUs")
	return children, nil
}

// Accounts lists the accounts attached directly to ouID, exhausting
// pagination.
func (d *AWSDirectory) Accounts(ouID string) ([]model.AccountIdentity, error) {
	var accounts []model.AccountIdentity
	input := &organizations.ListAccountsForParentInput{
		ParentId: aws.String(ouID),
	}

	err := d.api.ListAccountsForParentPages(input,
		func(out *organizations.ListAccountsForParentOutput, _ bool) bool {
			for _, acct := range out.Accounts {
				accounts = append(accounts, model.AccountIdentity{
					ID:   aws.StringValue(acct.Id),
					Name: aws.StringValue(acct.Name),
				})
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("listing accounts of OU %s: %w", ouID, err)
	}

	d.logger.WithFields(log.Fields{"ou": ouID, "accounts": len(accounts)}).Debug("listed OU accounts")
	return accounts, nil
}

// AllAccountIDs lists every account identifier in the organization.
func (d *AWSDirectory) AllAccountIDs() (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	err := d.api.ListAccountsPages(&organizations.ListAccountsInput{},
		func(out *organizations.ListAccountsOutput, _ bool) bool {
			for _, acct := range out.Accounts {
				ids[aws.StringValue(acct.Id)] = struct{}{}
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("listing organization accounts: %w", err)
	}
	return ids, nil
}

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/smithy-go"
)

// Provisions repositories on AWS Elastic Container Registry.
type ECRProvisioner struct {
	client *ecr.Client
}

// Creates a provisioner for the classification's region, using the
// ambient AWS credential chain.
func NewECRProvisioner(ctx context.Context, class Classification) (Provisioner, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(class.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return &ECRProvisioner{client: ecr.NewFromConfig(cfg)}, nil
}

// Reports whether the named repository exists in the registry.
func (p *ECRProvisioner) RepositoryExists(ctx context.Context, name string) (bool, error) {
	_, err := p.client.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err != nil {
		var notFound *types.RepositoryNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		if isAccessDenied(err) {
			return false, fmt.Errorf("%w: describing repository %q: %v", ErrDenied, name, err)
		}
		return false, fmt.Errorf("%w: describing repository %q: %v", ErrRegistry, name, err)
	}
	return true, nil
}

// Creates the named repository.
func (p *ECRProvisioner) CreateRepository(ctx context.Context, name string) error {
	out, err := p.client.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(name),
	})
	if err != nil {
		if isAccessDenied(err) {
			return fmt.Errorf("%w: creating repository %q: %v", ErrDenied, name, err)
		}
		return fmt.Errorf("%w: creating repository %q: %v", ErrRegistry, name, err)
	}

	slog.Info("repository created", "uri", aws.ToString(out.Repository.RepositoryUri))

	return nil
}

// AWS reports authorization failures as an API error code rather than
// a typed exception in the ECR model.
func isAccessDenied(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException"
}

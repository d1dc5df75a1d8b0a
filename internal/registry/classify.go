package registry

import (
	"regexp"
	"strings"
)

// Kind of registry a classification identifies.
type Kind int

const (
	// Endpoint could not be interpreted as a registry host.
	Unknown Kind = iota

	// AWS Elastic Container Registry: account and region are encoded
	// in the endpoint, and repositories can be created via API.
	ECR

	// Any other registry. Repository existence is out of monopack's
	// control; some registries create repositories implicitly on push.
	Generic
)

func (k Kind) String() string {
	switch k {
	case ECR:
		return "ecr"
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

// Result of classifying a registry endpoint.
type Classification struct {
	Kind    Kind
	Account string // AWS account ID. ECR only.
	Region  string // AWS region. ECR only.
}

// ECR endpoint hosts look like "<account>.dkr.ecr.<region>.amazonaws.com".
var ecrHostPattern = regexp.MustCompile(`^(\d+)\.dkr\.ecr\.([a-z0-9-]+)\.amazonaws\.com$`)

// Classifies a registry endpoint from its string form alone.
//
// No network call is made: the endpoint's host structure is the only
// input. Endpoints with a path component ("docker.io/acme") classify
// on the host part.
func Classify(endpoint string) Classification {
	host, _, _ := strings.Cut(endpoint, "/")
	if host == "" {
		return Classification{Kind: Unknown}
	}

	if m := ecrHostPattern.FindStringSubmatch(host); m != nil {
		return Classification{Kind: ECR, Account: m[1], Region: m[2]}
	}

	return Classification{Kind: Generic}
}

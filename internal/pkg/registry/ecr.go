package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ecr"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

// Token is a temporary registry credential issued by a cloud provider.
type Token struct {
	Username      string
	Password      string
	ProxyEndpoint string
}

// TokenClient requests temporary registry access tokens.
type TokenClient interface {
	AuthorizationToken(ctx context.Context, region, accessKeyID, secretAccessKey string) (Token, error)
}

type ecrTokenClient struct{}

// NewECRTokenClient returns a TokenClient backed by the AWS ECR API.
func NewECRTokenClient() TokenClient {
	return ecrTokenClient{}
}

func (ecrTokenClient) AuthorizationToken(ctx context.Context, region, accessKeyID, secretAccessKey string) (Token, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKeyID, secretAccessKey, ""),
	})
	if err != nil {
		return Token{}, mapAWSErr(err)
	}
	out, err := ecr.New(sess).GetAuthorizationTokenWithContext(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return Token{}, mapAWSErr(err)
	}
	if len(out.AuthorizationData) == 0 {
		return Token{}, errdefs.Remote(http.StatusBadRequest, "ECR returned no authorization data")
	}
	data := out.AuthorizationData[0]
	decoded, err := base64.StdEncoding.DecodeString(aws.StringValue(data.AuthorizationToken))
	if err != nil {
		return Token{}, fmt.Errorf("failed to decode ECR authorization token: %w", err)
	}
	userAndPass := strings.SplitN(string(decoded), ":", 2)
	if len(userAndPass) != 2 {
		return Token{}, errdefs.Remote(http.StatusBadRequest, "malformed ECR authorization token")
	}
	return Token{
		Username:      userAndPass[0],
		Password:      userAndPass[1],
		ProxyEndpoint: aws.StringValue(data.ProxyEndpoint),
	}, nil
}

// mapAWSErr surfaces the message embedded in a structured AWS failure.
func mapAWSErr(err error) error {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return errdefs.Remote(http.StatusBadRequest, awsErr.Message())
	}
	return err
}

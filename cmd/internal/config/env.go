package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// ParametersPrefix is the SSM path holding the production environment.
const ParametersPrefix = "/notes/prod/"

// LoadEnv fills the process environment before FromEnv runs.
//
// With GO_ENV=production the variables come from SSM Parameter Store,
// otherwise from an optional .env file in the working directory.
func LoadEnv(ctx context.Context) error {
	if os.Getenv("GO_ENV") != "production" {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no .env file found, using process environment")
			return nil
		}
		return err
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	n, err := ExportParameters(ctx, ssm.NewFromConfig(cfg), ParametersPrefix)
	if err != nil {
		return err
	}
	log.Debugf("loaded %d prod environment variables", n)
	return nil
}

// ExportParameters copies every parameter below prefix into the process
// environment, keyed by its name relative to prefix.
func ExportParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, prefix string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	exported := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return exported, fmt.Errorf("unable to load prod environment: %w", err)
		}

		for _, param := range page.Parameters {
			key := strings.TrimPrefix(aws.ToString(param.Name), prefix)
			if key == "" {
				continue
			}
			if err := os.Setenv(key, aws.ToString(param.Value)); err != nil {
				return exported, fmt.Errorf("unable to set environment variable %s: %w", key, err)
			}
			exported++
		}
	}
	return exported, nil
}

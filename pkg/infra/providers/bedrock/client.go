package bedrock

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	stsTypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
)

const (
	defaultRegion    = "us-east-1"
	defaultMaxTokens = 1024
	roleSessionName  = "PromptGuardSession"
)

//go:generate mockery --name=ConverseAPI --dir=. --output=./mocks --filename=converse_api_mock.go --case=underscore --with-expecter

// ConverseAPI is the subset of the bedrock runtime client used here.
type ConverseAPI interface {
	Converse(
		ctx context.Context,
		params *bedrockruntime.ConverseInput,
		optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.ConverseOutput, error)
}

type ClientOption func(*client)

// WithRuntime pins the runtime client instead of building one per credential set.
func WithRuntime(api ConverseAPI) ClientOption {
	return func(c *client) {
		c.runtime = api
	}
}

type client struct {
	clientPool *sync.Map
	runtime    ConverseAPI
}

func NewBedrockClient(opts ...ClientOption) providers.Client {
	c := &client{
		clientPool: &sync.Map{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Ask(
	ctx context.Context,
	cfg *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	runtime, err := c.getOrCreateClient(ctx, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	var content []types.ContentBlock
	if len(cfg.Instructions) > 0 {
		content = append(content, &types.ContentBlockMemberText{Value: providers.FormatInstructions(cfg.Instructions)})
	}
	content = append(content, &types.ContentBlockMemberText{Value: prompt})

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	inference := &types.InferenceConfiguration{
		MaxTokens: aws.Int32(int32(maxTokens)),
	}
	if cfg.Temperature > 0 {
		inference.Temperature = aws.Float32(float32(cfg.Temperature))
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(cfg.Model),
		Messages: []types.Message{
			{Role: types.ConversationRoleUser, Content: content},
		},
		InferenceConfig: inference,
	}
	if cfg.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: cfg.SystemPrompt},
		}
	}

	out, err := runtime.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock converse failed: %w", err)
	}

	text := extractText(out)
	if text == "" {
		return nil, fmt.Errorf("no completions returned")
	}

	resp := &providers.CompletionResponse{
		ID:       fmt.Sprintf("bedrock-%s", cfg.Model),
		Model:    cfg.Model,
		Response: text,
	}
	if out.Usage != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(aws.ToInt32(out.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}
	return resp, nil
}

func extractText(out *bedrockruntime.ConverseOutput) string {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok && t.Value != "" {
			return t.Value
		}
	}
	return ""
}

func (c *client) getOrCreateClient(ctx context.Context, credentials providers.Credentials) (ConverseAPI, error) {
	if c.runtime != nil {
		return c.runtime, nil
	}
	clientKey := buildClientKey(credentials)
	if clientVal, ok := c.clientPool.Load(clientKey); ok {
		client, ok := clientVal.(*bedrockruntime.Client)
		if !ok {
			return nil, fmt.Errorf("invalid client type in pool")
		}
		return client, nil
	}
	cfg, err := buildAwsConfig(ctx, credentials)
	if err != nil {
		return nil, err
	}
	runtimeClient := bedrockruntime.NewFromConfig(cfg)
	c.clientPool.Store(clientKey, runtimeClient)
	return runtimeClient, nil
}

func buildClientKey(credentials providers.Credentials) string {
	if credentials.AwsBedrock == nil {
		return "default"
	}
	return fmt.Sprintf("%s:%s:%v:%s",
		credentials.AwsBedrock.AccessKey,
		credentials.AwsBedrock.Region,
		credentials.AwsBedrock.UseRole,
		credentials.AwsBedrock.RoleARN,
	)
}

func buildAwsConfig(ctx context.Context, credentials providers.Credentials) (aws.Config, error) {
	if credentials.AwsBedrock == nil || credentials.AwsBedrock.AccessKey == "" {
		region := defaultRegion
		if credentials.AwsBedrock != nil && credentials.AwsBedrock.Region != "" {
			region = credentials.AwsBedrock.Region
		}
		return config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}

	region := credentials.AwsBedrock.Region
	if region == "" {
		region = defaultRegion
	}

	accessKey := credentials.AwsBedrock.AccessKey
	secretKey := credentials.AwsBedrock.SecretKey

	if credentials.AwsBedrock.UseRole && credentials.AwsBedrock.RoleARN != "" {
		creds, err := assumeRole(ctx, accessKey, secretKey, credentials.AwsBedrock.RoleARN, region)
		if err != nil {
			return aws.Config{}, err
		}
		return loadAWSConfig(ctx, *creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken, region)
	}

	return loadAWSConfig(ctx, accessKey, secretKey, credentials.AwsBedrock.SessionToken, region)
}

func loadAWSConfig(ctx context.Context, accessKey, secretKey, sessionToken, region string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
				}, nil
			},
		)),
		config.WithRegion(region),
	)
}

func assumeRole(ctx context.Context, accessKey, secretKey, roleARN, region string) (*stsTypes.Credentials, error) {
	baseCfg, err := loadAWSConfig(ctx, accessKey, secretKey, "", region)
	if err != nil {
		return nil, fmt.Errorf("unable to load base AWS config: %w", err)
	}
	stsClient := sts.NewFromConfig(baseCfg)

	output, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(roleSessionName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role: %w", err)
	}
	return output.Credentials, nil
}

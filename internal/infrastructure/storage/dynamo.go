package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

// DynamoAPI is the subset of the DynamoDB client the store calls.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoConfig selects the table and, for local development, an endpoint override.
type DynamoConfig struct {
	Table    string
	Region   string
	Endpoint string
}

type dynamoItem struct {
	Slug             string                `dynamodbav:"slug"`
	Title            string                `dynamodbav:"title"`
	Industry         string                `dynamodbav:"industry"`
	Difficulty       string                `dynamodbav:"difficulty"`
	DifficultyScore  int                   `dynamodbav:"difficulty_score"`
	ROIScore         int                   `dynamodbav:"roi_score"`
	TimeSaved        string                `dynamodbav:"time_saved"`
	CostSavings      string                `dynamodbav:"cost_savings"`
	PaybackPeriod    string                `dynamodbav:"payback_period"`
	ProductivityGain string                `dynamodbav:"productivity_gain,omitempty"`
	Tools            []string              `dynamodbav:"tools,omitempty"`
	SourceURL        string                `dynamodbav:"source_url"`
	SourceDomain     string                `dynamodbav:"source_domain"`
	Body             string                `dynamodbav:"body"`
	PublishedAt      string                `dynamodbav:"published_at"`
	UpdatedAt        string                `dynamodbav:"updated_at"`
	Metadata         domain.RecordMetadata `dynamodbav:"metadata"`
}

// DynamoStore keeps one item per idea keyed by slug.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

var (
	_ ports.ContentStore  = (*DynamoStore)(nil)
	_ ports.ContentLister = (*DynamoStore)(nil)
)

// NewDynamoClient loads the default AWS configuration for the region.
func NewDynamoClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewDynamoStore wires a client to a table.
func NewDynamoStore(client DynamoAPI, table string) (*DynamoStore, error) {
	if client == nil || table == "" {
		return nil, errors.New("dynamo store misconfigured")
	}
	return &DynamoStore{client: client, table: table}, nil
}

func (s *DynamoStore) key(slug string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"slug": &types.AttributeValueMemberS{Value: slug}}
}

// Exists fetches only the key attribute.
func (s *DynamoStore) Exists(ctx context.Context, slug string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.table),
		Key:                  s.key(slug),
		ProjectionExpression: aws.String("slug"),
	})
	if err != nil {
		return false, fmt.Errorf("get %s: %w", slug, err)
	}
	return len(out.Item) > 0, nil
}

// ListTitles scans the table projecting only titles.
func (s *DynamoStore) ListTitles(ctx context.Context) ([]string, error) {
	var titles []string
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String("title"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan titles: %w", err)
		}
		var items []struct {
			Title string `dynamodbav:"title"`
		}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal titles: %w", err)
		}
		for _, item := range items {
			titles = append(titles, item.Title)
		}
	}
	return titles, nil
}

// Get loads a single item.
func (s *DynamoStore) Get(ctx context.Context, slug string) (domain.ContentRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(slug),
	})
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("get %s: %w", slug, err)
	}
	if len(out.Item) == 0 {
		return domain.ContentRecord{}, fmt.Errorf("%s: %w", slug, ports.ErrNotFound)
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return domain.ContentRecord{}, fmt.Errorf("unmarshal %s: %w", slug, err)
	}
	return item.record(), nil
}

// List scans every item.
func (s *DynamoStore) List(ctx context.Context) ([]domain.ContentRecord, error) {
	var records []domain.ContentRecord
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan ideas: %w", err)
		}
		var items []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal ideas: %w", err)
		}
		for _, item := range items {
			records = append(records, item.record())
		}
	}
	return records, nil
}

// Save replaces the item stored under the slug.
func (s *DynamoStore) Save(ctx context.Context, record domain.ContentRecord) error {
	item, err := attributevalue.MarshalMap(toDynamoItem(record))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", record.Slug, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put %s: %w", record.Slug, err)
	}
	return nil
}

func toDynamoItem(r domain.ContentRecord) dynamoItem {
	published := r.PublishedAt
	if published.IsZero() {
		published = time.Now()
	}
	updated := r.UpdatedAt
	if updated.IsZero() {
		updated = published
	}
	return dynamoItem{
		Slug:             r.Slug,
		Title:            r.Title,
		Industry:         r.Industry,
		Difficulty:       r.Difficulty,
		DifficultyScore:  r.DifficultyScore,
		ROIScore:         r.ROIScore,
		TimeSaved:        r.TimeSaved,
		CostSavings:      r.CostSavings,
		PaybackPeriod:    r.PaybackPeriod,
		ProductivityGain: r.ProductivityGain,
		Tools:            r.Tools,
		SourceURL:        r.SourceURL,
		SourceDomain:     r.SourceDomain,
		Body:             r.Body,
		PublishedAt:      published.UTC().Format(time.RFC3339),
		UpdatedAt:        updated.UTC().Format(time.RFC3339),
		Metadata:         r.Metadata,
	}
}

func (i dynamoItem) record() domain.ContentRecord {
	r := domain.ContentRecord{
		Frontmatter: domain.Frontmatter{
			Title:            i.Title,
			Slug:             i.Slug,
			Industry:         i.Industry,
			Difficulty:       i.Difficulty,
			DifficultyScore:  i.DifficultyScore,
			ROIScore:         i.ROIScore,
			TimeSaved:        i.TimeSaved,
			CostSavings:      i.CostSavings,
			PaybackPeriod:    i.PaybackPeriod,
			ProductivityGain: i.ProductivityGain,
			Tools:            i.Tools,
			PublishedDate:    i.PublishedAt,
			SourceURL:        i.SourceURL,
			SourceDomain:     i.SourceDomain,
		},
		Body:     i.Body,
		Metadata: i.Metadata,
	}
	r.PublishedAt, _ = time.Parse(time.RFC3339, i.PublishedAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, i.UpdatedAt)
	return r
}

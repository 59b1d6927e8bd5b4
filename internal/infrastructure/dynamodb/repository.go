package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"

	"sales-cockpit/internal/domain"
)

type Client struct {
	db        *awsv2dynamodb.Client
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	client := awsv2dynamodb.NewFromConfig(cfg)
	return &Client{db: client, tableName: tableName}, nil
}

func profilePK(profileID string) string { return "PROFILE#" + profileID }
func profileMetaSK() string             { return "META" }
func roleSK(role domain.Role) string    { return "ROLE#" + string(role) }
func summarySK(createdAt time.Time, id string) string {
	return "SUMMARY#" + createdAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

func isConditionalCheckFailure(err error) bool {
	var condErr *awsv2types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

type ProfileRepository struct{ client *Client }

type RoleRepository struct{ client *Client }

type SummaryRepository struct{ client *Client }

func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

func NewRoleRepository(client *Client) *RoleRepository {
	return &RoleRepository{client: client}
}

func NewSummaryRepository(client *Client) *SummaryRepository {
	return &SummaryRepository{client: client}
}

type rawProfile struct {
	ID          string `dynamodbav:"ID"`
	Email       string `dynamodbav:"Email"`
	FirstName   string `dynamodbav:"FirstName"`
	LastName    string `dynamodbav:"LastName"`
	DashboardID int    `dynamodbav:"DashboardID"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

func (raw rawProfile) toDomain() domain.Profile {
	updatedAt, _ := time.Parse(time.RFC3339, raw.UpdatedAt)
	return domain.Profile{
		ID:          raw.ID,
		Email:       raw.Email,
		FirstName:   raw.FirstName,
		LastName:    raw.LastName,
		DashboardID: raw.DashboardID,
		UpdatedAt:   updatedAt,
	}
}

func (r *ProfileRepository) GetByID(ctx context.Context, profileID string) (domain.Profile, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetProfile", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: profilePK(profileID)},
				"SK": &awsv2types.AttributeValueMemberS{Value: profileMetaSK()},
			},
		})
		return e
	})
	if err != nil {
		return domain.Profile{}, err
	}
	if out.Item == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	var raw rawProfile
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.Profile{}, err
	}
	return raw.toDomain(), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	return r.scanProfiles(ctx, false)
}

// ListWithDashboards returns only profiles bound to a dashboard. The
// user population is small, so a filtered scan over META items is
// sufficient and keeps the table free of secondary indexes.
func (r *ProfileRepository) ListWithDashboards(ctx context.Context) ([]domain.Profile, error) {
	return r.scanProfiles(ctx, true)
}

func (r *ProfileRepository) scanProfiles(ctx context.Context, dashboardsOnly bool) ([]domain.Profile, error) {
	segment := "DynamoDB.ScanProfiles"
	filter := "SK = :sk"
	values := map[string]awsv2types.AttributeValue{
		":sk": &awsv2types.AttributeValueMemberS{Value: profileMetaSK()},
	}
	if dashboardsOnly {
		segment = "DynamoDB.ScanDashboardProfiles"
		filter = "SK = :sk AND attribute_exists(DashboardID) AND DashboardID > :zero"
		values[":zero"] = &awsv2types.AttributeValueMemberN{Value: "0"}
	}
	profiles := []domain.Profile{}
	var startKey map[string]awsv2types.AttributeValue
	for {
		var out *awsv2dynamodb.ScanOutput
		err := xray.Capture(ctx, segment, func(ctx context.Context) error {
			var e error
			out, e = r.client.db.Scan(ctx, &awsv2dynamodb.ScanInput{
				TableName:                 aws.String(r.client.tableName),
				FilterExpression:          aws.String(filter),
				ExpressionAttributeValues: values,
				ExclusiveStartKey:         startKey,
			})
			return e
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			var raw rawProfile
			if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
				return nil, err
			}
			profiles = append(profiles, raw.toDomain())
		}
		if out.LastEvaluatedKey == nil {
			return profiles, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *ProfileRepository) Update(ctx context.Context, profile domain.Profile) error {
	expr := "SET FirstName = :f, LastName = :l, Email = :e, UpdatedAt = :u"
	values := map[string]awsv2types.AttributeValue{
		":f": &awsv2types.AttributeValueMemberS{Value: profile.FirstName},
		":l": &awsv2types.AttributeValueMemberS{Value: profile.LastName},
		":e": &awsv2types.AttributeValueMemberS{Value: profile.Email},
		":u": &awsv2types.AttributeValueMemberS{Value: profile.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	if profile.HasDashboard() {
		expr += ", DashboardID = :d"
		values[":d"] = &awsv2types.AttributeValueMemberN{Value: strconv.Itoa(profile.DashboardID)}
	} else {
		expr += " REMOVE DashboardID"
	}
	return xray.Capture(ctx, "DynamoDB.UpdateProfile", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: profilePK(profile.ID)},
				"SK": &awsv2types.AttributeValueMemberS{Value: profileMetaSK()},
			},
			UpdateExpression:          aws.String(expr),
			ExpressionAttributeValues: values,
			ConditionExpression:       aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *RoleRepository) ListByIdentity(ctx context.Context, profileID string) ([]domain.Role, error) {
	var out *awsv2dynamodb.QueryOutput
	err := xray.Capture(ctx, "DynamoDB.QueryRoles", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.Query(ctx, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(r.client.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: profilePK(profileID)},
				":sk": &awsv2types.AttributeValueMemberS{Value: "ROLE#"},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(out.Items))
	for _, item := range out.Items {
		raw := struct {
			Role string `dynamodbav:"Role"`
		}{}
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		roles = append(roles, domain.Role(raw.Role))
	}
	return roles, nil
}

// Replace swaps an identity's role rows for the given set. Not
// transactional: a failure can leave a partial set, which the next
// successful Replace repairs.
func (r *RoleRepository) Replace(ctx context.Context, profileID string, roles []domain.Role) error {
	current, err := r.ListByIdentity(ctx, profileID)
	if err != nil {
		return err
	}
	wanted := map[domain.Role]bool{}
	for _, role := range roles {
		wanted[role] = true
	}
	for _, role := range current {
		if wanted[role] {
			continue
		}
		err := xray.Capture(ctx, "DynamoDB.DeleteRole", func(ctx context.Context) error {
			_, e := r.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
				TableName: aws.String(r.client.tableName),
				Key: map[string]awsv2types.AttributeValue{
					"PK": &awsv2types.AttributeValueMemberS{Value: profilePK(profileID)},
					"SK": &awsv2types.AttributeValueMemberS{Value: roleSK(role)},
				},
			})
			return e
		})
		if err != nil {
			return err
		}
	}
	for role := range wanted {
		err := xray.Capture(ctx, "DynamoDB.PutRole", func(ctx context.Context) error {
			_, e := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
				TableName: aws.String(r.client.tableName),
				Item: map[string]awsv2types.AttributeValue{
					"PK":         &awsv2types.AttributeValueMemberS{Value: profilePK(profileID)},
					"SK":         &awsv2types.AttributeValueMemberS{Value: roleSK(role)},
					"EntityType": &awsv2types.AttributeValueMemberS{Value: "ROLE_ASSIGNMENT"},
					"Role":       &awsv2types.AttributeValueMemberS{Value: string(role)},
					"UpdatedAt":  &awsv2types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
				},
			})
			return e
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SummaryRepository) Put(ctx context.Context, summary domain.CallSummary) error {
	item := map[string]any{
		"PK":          profilePK(summary.OwnerID),
		"SK":          summarySK(summary.CreatedAt, summary.ID),
		"EntityType":  "CALL_SUMMARY",
		"ID":          summary.ID,
		"Transcript":  summary.Transcript,
		"Summary":     summary.Summary,
		"Customer":    summary.Customer,
		"ActionItems": summary.ActionItems,
		"Sentiment":   summary.Sentiment,
		"CreatedAt":   summary.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutCallSummary", func(ctx context.Context) error {
		_, err = r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(r.client.tableName),
			Item:      av,
		})
		return err
	})
}

func (r *SummaryRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.CallSummary, error) {
	var out *awsv2dynamodb.QueryOutput
	err := xray.Capture(ctx, "DynamoDB.QueryCallSummaries", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.Query(ctx, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(r.client.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: profilePK(ownerID)},
				":sk": &awsv2types.AttributeValueMemberS{Value: "SUMMARY#"},
			},
			// SK embeds an RFC3339Nano timestamp, so descending key
			// order is newest first.
			ScanIndexForward: aws.Bool(false),
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.CallSummary, 0, len(out.Items))
	for _, item := range out.Items {
		raw := struct {
			ID          string   `dynamodbav:"ID"`
			Transcript  string   `dynamodbav:"Transcript"`
			Summary     string   `dynamodbav:"Summary"`
			Customer    string   `dynamodbav:"Customer"`
			ActionItems []string `dynamodbav:"ActionItems"`
			Sentiment   string   `dynamodbav:"Sentiment"`
			CreatedAt   string   `dynamodbav:"CreatedAt"`
		}{}
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, raw.CreatedAt)
		summaries = append(summaries, domain.CallSummary{
			ID:          raw.ID,
			OwnerID:     ownerID,
			Transcript:  raw.Transcript,
			Summary:     raw.Summary,
			Customer:    raw.Customer,
			ActionItems: raw.ActionItems,
			Sentiment:   raw.Sentiment,
			CreatedAt:   createdAt,
		})
	}
	return summaries, nil
}

// Package notion implements the scheduled-item store on top of the Notion API.
//
// Each database row holds the tweet text, a calendar date, an optional
// time-of-day, and a published checkbox. Fetching maps every matching row to
// an explicit Ok-or-Skipped outcome; rows with absent or unresolvable fields
// are skipped, never surfaced as errors.
package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/domain"
)

const defaultOpTimeout = 10 * time.Second

// Properties names the database columns the store reads and writes.
type Properties struct {
	Tweet     string
	Scheduled string
	TimeOfDay string
	Published string
}

// Store reads pending tweet rows from a Notion database and marks them
// published. It implements tick.ItemStore.
type Store struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	props      Properties
	opTimeout  time.Duration
}

// New creates a Store for the given database. Empty property names fall back
// to the original column names (Tweet, Scheduled, Time, isPublished).
func New(apiKey, databaseID string, props Properties, opTimeout time.Duration) *Store {
	if props.Tweet == "" {
		props.Tweet = "Tweet"
	}
	if props.Scheduled == "" {
		props.Scheduled = "Scheduled"
	}
	if props.TimeOfDay == "" {
		props.TimeOfDay = "Time"
	}
	if props.Published == "" {
		props.Published = "isPublished"
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Store{
		client:     notionapi.NewClient(notionapi.Token(apiKey)),
		databaseID: notionapi.DatabaseID(databaseID),
		props:      props,
		opTimeout:  opTimeout,
	}
}

// FetchPending queries the database for rows that are not yet published and
// have a scheduled date, following the response cursor across pages. Each row
// maps to a RowResult; a query failure is returned to the caller, which treats
// the tick as having no candidates.
func (s *Store) FetchPending(ctx context.Context) ([]domain.RowResult, error) {
	// Checkbox filters cannot express equals:false (omitted by the client's
	// encoder), so match "not equal to true" instead.
	filter := notionapi.AndCompoundFilter{
		notionapi.PropertyFilter{
			Property: s.props.Published,
			Checkbox: &notionapi.CheckboxFilterCondition{DoesNotEqual: true},
		},
		notionapi.PropertyFilter{
			Property: s.props.Scheduled,
			Date:     &notionapi.DateFilterCondition{IsNotEmpty: true},
		},
	}

	var rows []domain.RowResult
	req := &notionapi.DatabaseQueryRequest{Filter: filter, PageSize: 100}

	for {
		opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
		resp, err := s.client.Database.Query(opCtx, s.databaseID, req)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("query database: %w", err)
		}

		for _, page := range resp.Results {
			rows = append(rows, s.rowFromPage(page))
		}

		if !resp.HasMore {
			break
		}
		req.StartCursor = resp.NextCursor
	}

	return rows, nil
}

// MarkPublished sets the published checkbox on the given row.
func (s *Store) MarkPublished(ctx context.Context, id string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	_, err := s.client.Page.Update(opCtx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			s.props.Published: notionapi.CheckboxProperty{Checkbox: true},
		},
	})
	if err != nil {
		return fmt.Errorf("update page %s: %w", id, err)
	}
	return nil
}

func (s *Store) rowFromPage(page notionapi.Page) domain.RowResult {
	text := richTextValue(page.Properties[s.props.Tweet])
	start, hasStart := dateStart(page.Properties[s.props.Scheduled])
	timeOfDay := richTextValue(page.Properties[s.props.TimeOfDay])
	return buildRow(page.ID.String(), text, start, hasStart, timeOfDay)
}

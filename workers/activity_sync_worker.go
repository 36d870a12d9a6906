package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"athlete-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivitySyncClient mirrors imported Strava/Garmin activities from the
// import service into the local activity_mirrors table. The OAuth dance and
// provider API calls all live in the import service; this side only consumes
// final metric values.
type ActivitySyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewActivitySyncClient(db *gorm.DB) *ActivitySyncClient {
	baseURL := os.Getenv("IMPORT_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("IMPORT_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("GRADING_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("GRADING_SERVICE_TOKEN environment variable is required for activity sync")
	}

	return &ActivitySyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *ActivitySyncClient) GetChangedActivities(ctx context.Context, since time.Time) ([]models.ActivityMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/internal/activities", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call import service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("import service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Activities []models.ActivityMirror `json:"activities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode import service response: %w", err)
	}

	return response.Activities, nil
}

// PollActivities runs the incremental mirror loop.
func PollActivities(ctx context.Context, client *ActivitySyncClient, pollInterval time.Duration) {
	log.Println("Starting activity import polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Activity polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()

			activities, err := client.GetChangedActivities(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling activities: %v", err)
				continue
			}

			if len(activities) == 0 {
				continue
			}

			for i := range activities {
				activities[i].LastSyncedAt = tickTime
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "external_activity_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"provider", "athlete_external_id", "activity_type",
						"metric_value", "metric_unit", "started_at",
						"last_synced_at", "updated_at",
					}),
				},
			).Create(&activities).Error; err != nil {
				log.Printf("❌ Failed to upsert %d activity(ies): %v", len(activities), err)
				// Keep lastSyncTime — retry the same window next tick.
				continue
			}

			lastSyncTime = tickTime
			log.Printf("✅ Mirrored %d imported activity(ies).", len(activities))
		}
	}
}

// GetActivityByExternalID looks up a mirrored activity.
func GetActivityByExternalID(db *gorm.DB, externalID string) (models.ActivityMirror, bool, error) {
	var activity models.ActivityMirror
	if err := db.Where("external_activity_id = ?", externalID).First(&activity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return activity, false, nil
		}
		return activity, false, err
	}
	return activity, true, nil
}

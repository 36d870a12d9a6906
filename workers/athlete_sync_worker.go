// workers/athlete_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"athlete-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredAthleteProfile matches the JSON response from the identity service.
type MirroredAthleteProfile struct {
	ID          string     `json:"id"`
	ExternalID  string     `json:"external_id"`
	Username    string     `json:"username"`
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	Disciplines []string   `json:"disciplines,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the identity
// service response.
type GetProfileChangesResponse struct {
	Profiles []MirroredAthleteProfile `json:"profiles"`
}

// AthleteSyncWorker keeps the local athletes table in step with the identity
// service. The engine reads date of birth and gender from the mirror — it
// never calls the identity service on the request path.
type AthleteSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewAthleteSyncWorker(db *gorm.DB, identityServiceBaseURL, endpointPath, serviceToken string) *AthleteSyncWorker {
	return &AthleteSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      identityServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *AthleteSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Athlete Sync Worker (identity-service → athletes)…")
	go w.run(ctx)
}

func (w *AthleteSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial athlete sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Athlete sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Athlete Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local mirror.
func (w *AthleteSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM athletes WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes and upserts them into the athletes table.
func (w *AthleteSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid identity service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to identity service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode identity service response: %w", err)
	}

	if len(response.Profiles) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d athlete profile(s)…", len(response.Profiles))

	var upsertCount, errorCount int
	for _, remote := range response.Profiles {
		local := models.Athlete{
			ExternalUserID: remote.ExternalID,
			Username:       remote.Username,
			FirstName:      remote.FirstName,
			LastName:       remote.LastName,
			AvatarURL:      remote.AvatarURL,
			DateOfBirth:    remote.DateOfBirth,
			Gender:         remote.Gender,
			Disciplines:    joinDisciplines(remote.Disciplines),
		}
		local.CreatedAt = remote.CreatedAt
		local.UpdatedAt = remote.UpdatedAt

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "first_name", "last_name", "avatar_url",
				"date_of_birth", "gender", "disciplines", "updated_at",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert athlete (external_id=%q): %v", remote.ExternalID, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d athlete(s) (%d upserted, %d errors)", len(response.Profiles), upsertCount, errorCount)
	return nil
}

func joinDisciplines(disciplines []string) string {
	out := ""
	for i, d := range disciplines {
		if i > 0 {
			out += ","
		}
		out += d
	}
	return out
}

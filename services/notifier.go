package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"athlete-progression-system/models"
)

// Notifier receives fire-and-forget engine events. Delivery failures are
// logged and dropped — they never roll back an engine transition.
type Notifier interface {
	SubmissionApproved(sub *models.Submission, result *ProgressionResult)
	SubmissionRejected(sub *models.Submission)
	RankUnlocked(athleteID string, rank models.RankDefinition)
}

// NotificationClient posts events to the notification service through the
// gateway mesh.
type NotificationClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewNotificationClient(baseURL, token string) *NotificationClient {
	return &NotificationClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *NotificationClient) SubmissionApproved(sub *models.Submission, result *ProgressionResult) {
	payload := map[string]interface{}{
		"athlete_id":    sub.AthleteID,
		"challenge_id":  sub.ChallengeID,
		"claimed_ranks": sub.ClaimedRankList(),
	}
	if result != nil {
		payload["new_xp"] = result.NewXP
		payload["new_level"] = result.NewLevel
	}
	go c.post("submission_approved", payload)
}

func (c *NotificationClient) SubmissionRejected(sub *models.Submission) {
	go c.post("submission_rejected", map[string]interface{}{
		"athlete_id":   sub.AthleteID,
		"challenge_id": sub.ChallengeID,
		"notes":        sub.ReviewNotes,
	})
}

func (c *NotificationClient) RankUnlocked(athleteID string, rank models.RankDefinition) {
	go c.post("rank_unlocked", map[string]interface{}{
		"athlete_id": athleteID,
		"rank_id":    rank.ID,
		"rank_name":  rank.Name,
		"domain_id":  rank.DomainID,
	})
}

func (c *NotificationClient) post(event string, payload map[string]interface{}) {
	body, _ := json.Marshal(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})

	req, err := http.NewRequest("POST", c.BaseURL+"/api/v1/internal/events", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("⚠️ [NOTIFY] failed to build %s request: %v", event, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("⚠️ [NOTIFY] %s delivery failed: %v", event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ [NOTIFY] %s returned %d", event, resp.StatusCode)
		return
	}
	log.Printf("📣 [NOTIFY] %s delivered", event)
}

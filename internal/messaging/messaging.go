// Package messaging carries order notifications over a broker. Publishers
// implement services.Notifier; consumers hand decoded notifications to another
// Notifier, normally the mailbox.
package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
)

var log = config.NewLogger()

func encode(n models.Notification) ([]byte, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return body, nil
}

func decode(body []byte) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return n, fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.UserID == "" || n.Text == "" {
		return n, fmt.Errorf("%w: notification without user or text", models.ErrValidation)
	}
	return n, nil
}

package mqtt_client

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const publishTimeout = 5 * time.Second

// PublishJSON marshals the payload and publishes it at QoS 1 without
// retaining.
func PublishJSON(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal mqtt payload")
	}

	tok := Client().Publish(topic, 1, false, data)
	if !tok.WaitTimeout(publishTimeout) {
		return errors.Errorf("mqtt publish to %s timed out", topic)
	}
	return errors.Wrap(tok.Error(), "failed to publish mqtt message")
}

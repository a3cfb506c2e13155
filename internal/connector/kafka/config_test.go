package kafka

import (
	"strings"
	"testing"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestValidateTopicName(t *testing.T) {
	valid := []string{"orders", "orders.v1", "a_b-c", strings.Repeat("x", 249)}
	for _, n := range valid {
		assert.NoError(t, ValidateTopicName(n), n)
	}

	invalid := map[string]string{
		"":                       "empty",
		".":                      "cannot be",
		"..":                     "cannot be",
		strings.Repeat("x", 250): "longer than 249",
		"orders/v1":              "contains characters",
		"orders v1":              "contains characters",
	}
	for n, msg := range invalid {
		assert.ErrorContains(t, ValidateTopicName(n), msg, n)
	}
}

func TestTopicNameValidator(t *testing.T) {
	v := TopicName()
	assert.NoError(t, v.EnsureValid("kafka.topic", "orders"))

	err := v.EnsureValid("kafka.topic", "bad topic")
	assert.ErrorIs(t, err, config.ErrInvalid)
	var ce *config.Error
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "kafka.topic", ce.Key)
}

func TestTemplateValidator(t *testing.T) {
	v := Template()
	assert.NoError(t, v.EnsureValid("topics", "orders"))
	assert.NoError(t, v.EnsureValid("topics", "mirror/${topic}"))
	assert.NoError(t, v.EnsureValid("topics", "orders,payments"))
	assert.NoError(t, v.EnsureValid("topics", "{{topic}}"))
	assert.ErrorIs(t, v.EnsureValid("topics", "${nope}"), config.ErrInvalid)
	assert.ErrorIs(t, v.EnsureValid("topics", "${topic"), config.ErrInvalid)
}

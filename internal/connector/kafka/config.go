package kafka

import (
	"fmt"
	"regexp"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/config"
)

const maxTopicLength = 249

var legalTopic = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateTopicName applies the broker's topic naming rules.
func ValidateTopicName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("topic name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("topic name cannot be %q", name)
	case len(name) > maxTopicLength:
		return fmt.Errorf("topic name is longer than %d characters", maxTopicLength)
	case !legalTopic.MatchString(name):
		return fmt.Errorf("topic name %q contains characters other than ASCII alphanumerics, '.', '_' and '-'", name)
	}
	return nil
}

// TopicName validates a String setting holding one topic name.
func TopicName() config.Validator {
	return config.ValidatorFunc(func(key string, value any) error {
		s, _ := value.(string)
		if err := ValidateTopicName(s); err != nil {
			return config.Invalid(key, value, err.Error())
		}
		return nil
	})
}

// Template validates a String setting holding a topic template. Only the
// placeholders are checked; the literal text may be a subscription list
// such as "orders,payments".
func Template() config.Validator {
	return config.ValidatorFunc(func(key string, value any) error {
		s, _ := value.(string)
		if _, err := ParseTopicTemplate(s); err != nil {
			return config.Invalid(key, value, err.Error())
		}
		return nil
	})
}

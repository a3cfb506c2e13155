package kafka

import (
	"fmt"
	"strconv"
	"strings"

	kafka "github.com/segmentio/kafka-go"
)

// Placeholders understood by topic templates.
const (
	FieldTopic     = "topic"
	FieldPartition = "partition"
	FieldOffset    = "offset"
	FieldKey       = "key"
)

type segment struct {
	literal string
	field   string
}

// TopicTemplate renders a string from fields of a Kafka record, e.g.
// "events.${topic}" or "${topic}-${partition}". Text outside ${...} is
// copied verbatim.
type TopicTemplate struct {
	raw      string
	segments []segment
}

// ParseTopicTemplate rejects unknown placeholders and unterminated "${".
func ParseTopicTemplate(s string) (TopicTemplate, error) {
	t := TopicTemplate{raw: s}
	rest := s
	for {
		i := strings.Index(rest, "${")
		if i < 0 {
			break
		}
		if i > 0 {
			t.segments = append(t.segments, segment{literal: rest[:i]})
		}
		end := strings.IndexByte(rest[i:], '}')
		if end < 0 {
			return TopicTemplate{}, fmt.Errorf("template %q: unterminated placeholder", s)
		}
		name := rest[i+2 : i+end]
		switch name {
		case FieldTopic, FieldPartition, FieldOffset, FieldKey:
		default:
			return TopicTemplate{}, fmt.Errorf("template %q: unknown placeholder ${%s}", s, name)
		}
		t.segments = append(t.segments, segment{field: name})
		rest = rest[i+end+1:]
	}
	if rest != "" {
		t.segments = append(t.segments, segment{literal: rest})
	}
	return t, nil
}

func MustParseTopicTemplate(s string) TopicTemplate {
	t, err := ParseTopicTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Static reports whether the template has no placeholders.
func (t TopicTemplate) Static() bool {
	for _, s := range t.segments {
		if s.field != "" {
			return false
		}
	}
	return true
}

func (t TopicTemplate) String() string { return t.raw }

// MarshalYAML writes the template in its source form.
func (t TopicTemplate) MarshalYAML() (any, error) { return t.raw, nil }

func (t TopicTemplate) Render(m kafka.Message) string {
	var b strings.Builder
	for _, s := range t.segments {
		switch s.field {
		case "":
			b.WriteString(s.literal)
		case FieldTopic:
			b.WriteString(m.Topic)
		case FieldPartition:
			b.WriteString(strconv.Itoa(m.Partition))
		case FieldOffset:
			b.WriteString(strconv.FormatInt(m.Offset, 10))
		case FieldKey:
			b.Write(m.Key)
		}
	}
	return b.String()
}

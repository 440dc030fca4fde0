package mqtt

import (
	"fmt"
	"strconv"
)

// Topic prefixes of the designer.
const (
	TopicPrefix       = "designer"
	TopicPrefixSystem = "designer/system"
)

// Project events published after a successful run.
const (
	EventExported = "exported"
	EventImported = "imported"
)

// Topics builds designer MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.ProjectEvent(42, mqtt.EventExported)
//	// Returns: "designer/project/42/exported"
type Topics struct{}

// SystemStatus is the retained online/offline status of the designer.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ProjectEvent returns the topic of one event of one project.
func (Topics) ProjectEvent(projectID int64, event string) string {
	return fmt.Sprintf("%s/project/%s/%s", TopicPrefix, strconv.FormatInt(projectID, 10), event)
}

// AllProjectEvents matches every event of every project.
func (Topics) AllProjectEvents() string {
	return TopicPrefix + "/project/+/+"
}

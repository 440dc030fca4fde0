// Package mqtt publishes designer events to an MQTT broker.
//
// Other Gray Logic services follow project activity by subscribing to
//
//	designer/project/{id}/exported
//	designer/project/{id}/imported
//
// Each message is a JSON summary of the run (format, entity counts, skipped
// items). The designer's own presence is kept on the retained topic
// designer/system/status, with a Last Will marking an unexpected disconnect.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishEvent(project.ID, mqtt.EventExported, summary)
//
// The client reconnects on its own with exponential backoff between
// mqtt.reconnect.initial_delay and mqtt.reconnect.max_delay seconds.
package mqtt

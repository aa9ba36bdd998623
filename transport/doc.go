// Package transport connects the dispatcher to an MQTT broker using the
// Eclipse Paho client.
//
// Subscriptions are remembered and re-established on every reconnect, so a
// broker restart does not silently stop firmware updates.
//
// Example:
//
//	c := transport.New(transport.Options{Host: "broker", Port: 1883}, log)
//	if err := c.Connect(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	err := dispatcher.Start(c)
package transport

// Package mqtt provides MQTT client connectivity for cecctl.
//
// The CEC bridge uses it to take commands from, and publish acknowledgements,
// device state, and health to, an MQTT broker.
//
//	Home automation ↔ MQTT Broker ↔ cecctl ↔ CEC bus
//
// The client reconnects automatically, restores its subscriptions after a
// reconnect, and registers a Last Will so the broker marks cecctl offline if
// it disappears.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(mqtt.AddressFromTopic(topic), payload)
//	    })
package mqtt

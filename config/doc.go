// Package config loads the bridge configuration with viper.
//
// Settings come from a YAML file and MYSB_-prefixed environment variables,
// where '.' in a key becomes '_' (MYSB_MQTT_HOST overrides mqtt.host).
//
//	mqtt:
//	  host: localhost
//	  port: 1883
//	  sub_topic: mysensors_rx
//	  pub_topic: mysensors_tx
//	ota:
//	  update_blocks: 100
//	  types:    {1: Sensor}
//	  versions: {1: "1.0"}
//	  firmware: {1: {1: firmware/sensor-1.0.hex}}
//	  nodes:
//	    default: {type: 1, version: 1}
//	auto_id:
//	  next_id: 20
//
// Removing auto_id.next_id disables node ID assignment.
package config

// Package simulator serves the sensor's HTTP contract so the CLI and the
// dashboard can be developed and tested without hardware.
//
// Endpoints:
//
//	GET  /               plain status page
//	GET  /getConfig      current record, booleans encoded as 1/0 like firmware
//	POST /updateConfig   merge the posted fields, reply "Config updated"
//	GET  /getSensorData  {"temperature": .., "humidity": ..} drifting slowly
//
// Config.FailRate and Config.Latency inject failures and delay into every
// request after the status page. With Config.Advertise set the simulator
// also announces itself over mDNS as "tempsense-<id>".
package simulator

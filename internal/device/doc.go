// Package device is the HTTP client for the temperature/humidity sensor.
//
// The sensor serves three JSON endpoints:
//
//	GET  /getConfig      stored configuration (fields may be missing)
//	POST /updateConfig   full configuration record, reply text is opaque
//	GET  /getSensorData  {"temperature": 24.5, "humidity": 45.2}
//
// Each Client method issues exactly one request and returns a *DeviceError
// on failure. Retrying is the caller's decision: the sync session drops a
// failed telemetry tick or push, while VerifyRecord retries reads after a
// one-shot CLI write.
//
// # Usage Example
//
//	client := device.NewClient("192.168.1.40", 80)
//	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
//	defer cancel()
//
//	partial, err := client.GetConfig(ctx)
//	if err != nil {
//	    fmt.Println(device.GetShortErrorMessage(err))
//	    return
//	}
//	model := settings.NewModel()
//	model.LoadFrom(partial)
//	_ = model.Set(settings.FieldLEDIntensity, 180)
//	_, err = client.SetConfig(ctx, model.Snapshot())
package device

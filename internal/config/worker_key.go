package config

type WorkerKeyStruct struct {
	TelemetryQueue string
}

var WorkerKey = &WorkerKeyStruct{
	TelemetryQueue: "telemetry_events_queue",
}
